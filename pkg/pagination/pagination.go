package pagination

const (
	// DefaultPerPage is the standard page size when a limit is not provided.
	DefaultPerPage = 25
	// MaxPerPage caps how many rows any list query can request.
	MaxPerPage = 100
)

// Params holds page pagination inputs from controllers or services.
// Pages are 1-based; the wire contract is `?page=N&per_page=M`.
type Params struct {
	Page    int
	PerPage int
}

// Normalize clamps the parameters into valid bounds.
func (p Params) Normalize() Params {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PerPage <= 0 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	return p
}

// Offset returns the row offset for the normalized page.
func (p Params) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.PerPage
}

// Limit returns the normalized page size.
func (p Params) Limit() int {
	return p.Normalize().PerPage
}

// TotalPages converts a row count into the page count for the given size.
func TotalPages(total int64, perPage int) int {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if total <= 0 {
		return 0
	}
	pages := total / int64(perPage)
	if total%int64(perPage) != 0 {
		pages++
	}
	return int(pages)
}
