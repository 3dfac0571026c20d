package models

// SearchType enumerates the operations a question can resolve to.
type SearchType string

const (
	SearchByIdentifier SearchType = "search_by_identifier"
	SearchByStatus     SearchType = "search_by_status"
	ListAll            SearchType = "list_all"
	GeneralInfo        SearchType = "general_info"
)

// Intent is the classification of one question. Exactly one of Identifier
// and Status is meaningful, selected by SearchType.
type Intent struct {
	SearchType SearchType `json:"search_type"`
	Identifier string     `json:"identifier,omitempty"`
	Status     string     `json:"status,omitempty"`
	Purpose    string     `json:"intent,omitempty"`
}
