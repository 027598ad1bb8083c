package dataverse

// Solution is a row of the solution table.
type Solution struct {
	ID           string `json:"solutionid"`
	UniqueName   string `json:"uniquename"`
	FriendlyName string `json:"friendlyname"`
	Version      string `json:"version"`
	Description  string `json:"description"`
}

// WebResource is a row of the webresource table.
// Content is the base64 encoded file body as stored by Dataverse.
type WebResource struct {
	ID              string `json:"webresourceid,omitempty"`
	Name            string `json:"name"`
	DisplayName     string `json:"displayname,omitempty"`
	Description     string `json:"description,omitempty"`
	Content         string `json:"content"`
	WebResourceType int    `json:"webresourcetype,omitempty"`
}

// collection is the OData envelope for entity sets.
type collection[T any] struct {
	Value []T `json:"value"`
}
