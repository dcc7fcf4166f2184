package search

// ResultSoftLimit bounds how many results one module adds to a query.
// Modules poll OverLimit between candidates; a module may overshoot within
// one batch.
const ResultSoftLimit = 500

// Context accumulates the results of one query.
type Context struct {
	Criteria Criteria

	results []Result
	limit   int
	weight  int
	start   int // index of the running module's first result
}

// NewContext creates an empty Context for c.
func NewContext(c Criteria) *Context {
	return &Context{
		Criteria: c,
		limit:    ResultSoftLimit,
		weight:   DefaultWeight,
	}
}

// AddResult appends r. Results scoring 0 or less are excluded.
func (c *Context) AddResult(r Result) {
	if r == nil || r.Score() <= 0 {
		return
	}
	c.results = append(c.results, r)
}

// AddResults appends every result that scores above 0.
func (c *Context) AddResults(rs ...Result) {
	for _, r := range rs {
		c.AddResult(r)
	}
}

// OverLimit reports whether the running module has exceeded the soft result
// limit. Each module gets its own allowance.
func (c *Context) OverLimit() bool {
	return len(c.results)-c.start > c.limit
}

// Weighted applies the running module's weight to a raw match score.
// A raw score of 0 stays 0.
func (c *Context) Weighted(raw int) int {
	if raw <= 0 {
		return 0
	}
	return raw * c.weight
}

// Len returns the number of accumulated results.
func (c *Context) Len() int {
	return len(c.results)
}

// Results returns the accumulated results in insertion order.
func (c *Context) Results() []Result {
	return c.results
}

// beginModule prepares the context for the next module's scan.
func (c *Context) beginModule(weight int) {
	c.setWeight(weight)
	c.start = len(c.results)
}

func (c *Context) setWeight(w int) {
	if w <= 0 {
		w = DefaultWeight
	}
	c.weight = w
}
