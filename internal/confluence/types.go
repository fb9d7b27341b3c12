package confluence

const (
	// StatusCurrent is the lifecycle status given to every page this server writes.
	StatusCurrent = "current"
	// RepresentationStorage names the Confluence storage (XHTML-like) body format.
	RepresentationStorage = "storage"
)

// Page is a Confluence page as returned by the v2 API.
type Page struct {
	ID        string     `json:"id"`
	Status    string     `json:"status"`
	Title     string     `json:"title"`
	SpaceID   *string    `json:"spaceId,omitempty"`
	ParentID  *string    `json:"parentId,omitempty"`
	AuthorID  *string    `json:"authorId,omitempty"`
	CreatedAt *string    `json:"createdAt,omitempty"`
	Version   *Version   `json:"version,omitempty"`
	Body      *PageBody  `json:"body,omitempty"`
	Links     *PageLinks `json:"_links,omitempty"`
}

// VersionNumber returns the page version, or 0 when the response carried none.
func (p *Page) VersionNumber() int {
	if p == nil || p.Version == nil {
		return 0
	}
	return p.Version.Number
}

// WebUI returns the relative web UI link, or "" when absent.
func (p *Page) WebUI() string {
	if p == nil || p.Links == nil || p.Links.WebUI == nil {
		return ""
	}
	return *p.Links.WebUI
}

// StorageValue returns the storage-format body and whether one was present.
func (p *Page) StorageValue() (string, bool) {
	if p == nil || p.Body == nil || p.Body.Storage == nil {
		return "", false
	}
	return p.Body.Storage.Value, true
}

// Version describes one revision of a page.
type Version struct {
	Number    int     `json:"number"`
	Message   *string `json:"message,omitempty"`
	CreatedAt *string `json:"createdAt,omitempty"`
}

// Body pairs a representation tag with the raw content.
type Body struct {
	Representation string `json:"representation"`
	Value          string `json:"value"`
}

// PageBody is the representation-keyed body container used in page responses.
type PageBody struct {
	Storage *Body `json:"storage,omitempty"`
}

// PageLinks holds navigational links attached to a page.
type PageLinks struct {
	WebUI *string `json:"webui,omitempty"`
}

// PageListResponse is a single page of results from a listing endpoint.
type PageListResponse struct {
	Results []Page     `json:"results"`
	Links   *ListLinks `json:"_links,omitempty"`
}

// ListLinks carries the pagination cursor links of a listing.
type ListLinks struct {
	Next *string `json:"next,omitempty"`
	Base *string `json:"base,omitempty"`
}

// HasMore reports whether the service advertised a next page of results.
func (r *PageListResponse) HasMore() bool {
	return r != nil && r.Links != nil && r.Links.Next != nil && *r.Links.Next != ""
}

// CreatePageRequest is the payload for POST /pages.
type CreatePageRequest struct {
	SpaceID  string  `json:"spaceId"`
	Status   string  `json:"status"`
	Title    string  `json:"title"`
	ParentID *string `json:"parentId,omitempty"`
	Body     Body    `json:"body"`
}

// UpdatePageRequest is the payload for PUT /pages/{id}.
type UpdatePageRequest struct {
	ID      string        `json:"id"`
	Status  string        `json:"status"`
	Title   string        `json:"title"`
	Body    Body          `json:"body"`
	Version VersionUpdate `json:"version"`
}

// VersionUpdate names the version a write produces.
type VersionUpdate struct {
	Number  int     `json:"number"`
	Message *string `json:"message,omitempty"`
}

// NewCreatePageRequest builds a create payload. An empty parentID creates a top-level page.
func NewCreatePageRequest(spaceID, title, body, parentID string) CreatePageRequest {
	return CreatePageRequest{
		SpaceID:  spaceID,
		Status:   StatusCurrent,
		Title:    title,
		ParentID: optional(parentID),
		Body:     storageBody(body),
	}
}

// NewUpdatePageRequest builds an update payload from the version the caller last saw.
// The service requires the next number, so the request carries currentVersion+1.
func NewUpdatePageRequest(id, title, body string, currentVersion int, message string) UpdatePageRequest {
	return UpdatePageRequest{
		ID:     id,
		Status: StatusCurrent,
		Title:  title,
		Body:   storageBody(body),
		Version: VersionUpdate{
			Number:  currentVersion + 1,
			Message: optional(message),
		},
	}
}

func storageBody(value string) Body {
	return Body{Representation: RepresentationStorage, Value: value}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
