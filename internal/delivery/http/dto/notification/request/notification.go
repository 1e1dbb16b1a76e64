package request

type ListNotificationsQuery struct {
	Type              string `form:"type"`
	Read              *bool  `form:"read"`
	Priority          string `form:"priority"`
	RelatedEntityType string `form:"relatedEntityType"`
	RelatedEntityID   string `form:"relatedEntityId"`
	Page              int    `form:"page"`
	PageSize          int    `form:"pageSize"`
}

// MarkReadRequest selects notifications by ids, by entity, or all of them.
type MarkReadRequest struct {
	IDs        []string `json:"ids"`
	All        bool     `json:"all"`
	EntityType string   `json:"entityType"`
	EntityID   string   `json:"entityId"`
}

type DeleteRequest struct {
	IDs        []string `json:"ids"`
	All        bool     `json:"all"`
	Read       bool     `json:"read"`
	EntityType string   `json:"entityType"`
	EntityID   string   `json:"entityId"`
}
