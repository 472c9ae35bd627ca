package chain

// Minimal ABIs for the three EduStore contracts, covering the calls the
// gateway makes. Kept as JSON so the bound contracts can be built without
// generated bindings.

const coreABI = `[
	{
		"inputs": [
			{"internalType": "string", "name": "contentId", "type": "string"},
			{"internalType": "string", "name": "title", "type": "string"},
			{"internalType": "bool", "name": "isPublic", "type": "bool"}
		],
		"name": "storeContent",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [],
		"name": "getMyContent",
		"outputs": [{"internalType": "string[]", "name": "", "type": "string[]"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [{"internalType": "string", "name": "contentId", "type": "string"}],
		"name": "getContentDetails",
		"outputs": [
			{"internalType": "address", "name": "owner", "type": "address"},
			{"internalType": "string", "name": "title", "type": "string"},
			{"internalType": "bool", "name": "isPublic", "type": "bool"},
			{"internalType": "uint256", "name": "timestamp", "type": "uint256"}
		],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [{"internalType": "string", "name": "contentId", "type": "string"}],
		"name": "isContentPublic",
		"outputs": [{"internalType": "bool", "name": "", "type": "bool"}],
		"stateMutability": "view",
		"type": "function"
	}
]`

const storageABI = `[
	{
		"inputs": [
			{"internalType": "string", "name": "contentId", "type": "string"},
			{"internalType": "address", "name": "provider", "type": "address"},
			{"internalType": "uint256", "name": "durationDays", "type": "uint256"}
		],
		"name": "createDeal",
		"outputs": [],
		"stateMutability": "payable",
		"type": "function"
	},
	{
		"inputs": [
			{"internalType": "string", "name": "contentId", "type": "string"},
			{"internalType": "uint256", "name": "additionalDays", "type": "uint256"}
		],
		"name": "extendDeal",
		"outputs": [],
		"stateMutability": "payable",
		"type": "function"
	},
	{
		"inputs": [{"internalType": "string", "name": "contentId", "type": "string"}],
		"name": "getDeal",
		"outputs": [
			{"internalType": "address", "name": "provider", "type": "address"},
			{"internalType": "uint256", "name": "startTime", "type": "uint256"},
			{"internalType": "uint256", "name": "endTime", "type": "uint256"},
			{"internalType": "uint256", "name": "payment", "type": "uint256"},
			{"internalType": "bool", "name": "active", "type": "bool"}
		],
		"stateMutability": "view",
		"type": "function"
	}
]`

const accessABI = `[
	{
		"inputs": [
			{"internalType": "string", "name": "contentId", "type": "string"},
			{"internalType": "address", "name": "user", "type": "address"},
			{"internalType": "uint256", "name": "durationDays", "type": "uint256"}
		],
		"name": "grantAccess",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [
			{"internalType": "string", "name": "contentId", "type": "string"},
			{"internalType": "address", "name": "user", "type": "address"}
		],
		"name": "revokeAccess",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [
			{"internalType": "string", "name": "contentId", "type": "string"},
			{"internalType": "address", "name": "user", "type": "address"}
		],
		"name": "hasAccess",
		"outputs": [{"internalType": "bool", "name": "", "type": "bool"}],
		"stateMutability": "view",
		"type": "function"
	}
]`
