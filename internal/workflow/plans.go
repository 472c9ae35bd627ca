package workflow

import "edustore-gateway/internal/storage"

// Plan is a fixed storage tier. Price is in the chain's native currency,
// kept as a decimal string until deal time.
type Plan struct {
	Name        string             `json:"name"`
	Days        int64              `json:"days"`
	Price       string             `json:"price"`
	Copies      int                `json:"copies"`
	Description string             `json:"description"`
	DealParams  storage.DealParams `json:"deal_params"`
}

var DefaultPlans = []Plan{
	{
		Name:        "Basic",
		Days:        30,
		Price:       "0.01",
		Copies:      1,
		Description: "Basic storage for 30 days with single copy on Filecoin",
		DealParams: storage.DealParams{
			NumOfCopies:                1,
			DealDuration:               43200, // 30 days in minutes
			Replication:                1,
			CheckOneByOneStorageStatus: true,
		},
	},
	{
		Name:        "Standard",
		Days:        180,
		Price:       "0.03",
		Copies:      2,
		Description: "Standard 6-month storage with 2 copies for redundancy",
		DealParams: storage.DealParams{
			NumOfCopies:                2,
			DealDuration:               259200, // 180 days in minutes
			Replication:                1,
			CheckOneByOneStorageStatus: true,
		},
	},
	{
		Name:        "Premium",
		Days:        365,
		Price:       "0.05",
		Copies:      3,
		Description: "Premium 1-year storage with 3 copies and geographic distribution",
		DealParams: storage.DealParams{
			NumOfCopies:                3,
			DealDuration:               525600, // 365 days in minutes
			Replication:                2,
			CheckOneByOneStorageStatus: true,
		},
	},
}

func PlanByName(name string) (Plan, bool) {
	for _, p := range DefaultPlans {
		if p.Name == name {
			return p, true
		}
	}
	return Plan{}, false
}
