package intake

import "docustream.dev/docustream/model"

// Collector accumulates substitution values per scope in arrival order.
//
// Keys are not validated or deduplicated; an empty key simply never matches.
type Collector struct {
	header model.Values
	body   model.Values
}

// Add appends a batch. A nil batch is a no-op.
func (c *Collector) Add(b *model.ValueBatch) {
	if b == nil {
		return
	}
	c.header = append(c.header, b.Header...)
	c.body = append(c.body, b.Body...)
}

// Scope returns the values collected for s.
func (c *Collector) Scope(s model.Scope) model.Values {
	switch s {
	case model.ScopeHeader:
		return c.header
	case model.ScopeBody:
		return c.body
	default:
		return nil
	}
}

// Len returns the total number of collected values.
func (c *Collector) Len() int { return len(c.header) + len(c.body) }
