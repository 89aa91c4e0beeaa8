package types

// SourceTag identifies the cascade stage that produced a result. Diagnostics only.
type SourceTag struct {
	Stage    int    `json:"stage"`
	Name     string `json:"name"`
	Fallback bool   `json:"fallback,omitempty"`
}

type RetrievalResult struct {
	Items       []CatalogItem `json:"items"`
	Total       int           `json:"total"`
	Source      SourceTag     `json:"source"`
	Deferred    []string      `json:"deferred,omitempty"`
	DeferSearch bool          `json:"deferSearch,omitempty"`
	ClientPaged bool          `json:"clientPaged,omitempty"`
}
