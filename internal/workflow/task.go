package workflow

// Stage is the position of a task in the upload-and-register pipeline.
// Stages only move forward; Error is terminal and reachable from every
// non-terminal stage.
type Stage int

const (
	StageIdle Stage = iota
	StageUploading
	StageRegisteringContent
	StageAwaitingDealConfirmation
	StageCreatingDeal
	StageComplete
	StageError
)

func (s Stage) String() string {
	switch s {
	case StageUploading:
		return "uploading"
	case StageRegisteringContent:
		return "registering_content"
	case StageAwaitingDealConfirmation:
		return "awaiting_deal_confirmation"
	case StageCreatingDeal:
		return "creating_deal"
	case StageComplete:
		return "complete"
	case StageError:
		return "error"
	default:
		return "idle"
	}
}

func (s Stage) Terminal() bool {
	return s == StageComplete || s == StageError
}

// Task tracks one file's journey through the pipeline. All fields are owned
// by the orchestrator; other components only ever see copies.
type Task struct {
	ID        string
	FileName  string
	SizeBytes int64
	Title     string
	IsPublic  bool
	Plan      Plan

	Stage    Stage
	Progress float64 // upload percentage, 0..100
	Status   string  // human-readable progress line

	CID        string // set exactly once, on first successful upload
	RegisterTx string
	DealTx     string
	Err        string
}

// Snapshot is the read-only view handed to the API layer.
type Snapshot struct {
	ID         string  `json:"id"`
	FileName   string  `json:"file_name,omitempty"`
	Title      string  `json:"title,omitempty"`
	Plan       string  `json:"plan,omitempty"`
	Stage      string  `json:"stage"`
	Progress   float64 `json:"progress"`
	Status     string  `json:"status,omitempty"`
	CID        string  `json:"cid,omitempty"`
	RegisterTx string  `json:"register_tx,omitempty"`
	DealTx     string  `json:"deal_tx,omitempty"`
	Error      string  `json:"error,omitempty"`
}

func (t *Task) snapshot() Snapshot {
	return Snapshot{
		ID:         t.ID,
		FileName:   t.FileName,
		Title:      t.Title,
		Plan:       t.Plan.Name,
		Stage:      t.Stage.String(),
		Progress:   t.Progress,
		Status:     t.Status,
		CID:        t.CID,
		RegisterTx: t.RegisterTx,
		DealTx:     t.DealTx,
		Error:      t.Err,
	}
}
