package portalclient

// Status is the outcome marker carried by every envelope.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "error"
)

// Envelope is the uniform success-response wrapper returned by the backends.
type Envelope[T any] struct {
	Data       T      `json:"data"`
	Message    string `json:"message"`
	Status     Status `json:"status"`
	StatusCode int    `json:"statusCode"`
	Timestamp  string `json:"timestamp"`
}

// OK reports whether the backend marked the envelope as successful.
func (e *Envelope[T]) OK() bool {
	return e != nil && e.Status == StatusSuccess
}

// Pagination describes one page of a list result.
//
// Page is zero-based everywhere in this package: the first page is 0 and the
// last page is TotalPages-1.
type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// PaginatedEnvelope is an Envelope over a list with pagination metadata.
type PaginatedEnvelope[T any] struct {
	Envelope[[]T]
	Pagination Pagination `json:"pagination"`
}

// NewPagination computes the derived pagination fields for a zero-based page.
func NewPagination(page, limit, total int) Pagination {
	if page < 0 {
		page = 0
	}
	p := Pagination{
		Page:  page,
		Limit: limit,
		Total: total,
	}
	if limit > 0 && total > 0 {
		p.TotalPages = (total + limit - 1) / limit
	}
	p.HasNext = page < p.TotalPages-1
	p.HasPrev = page > 0
	return p
}

// Consistent reports whether the derived fields agree with Page, Limit and
// Total under the zero-based convention.
func (p Pagination) Consistent() bool {
	return p == NewPagination(p.Page, p.Limit, p.Total)
}
