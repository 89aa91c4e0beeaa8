package messaging

type ChangeTopic string

const (
	SearchTracked ChangeTopic = "catalog_search"
)
