package records

import (
	"slices"
	"sync"

	"github.com/desertthunder/inbody/internal/models"
)

// Collection is the ordered in-memory mirror of the sheet, oldest first.
//
// It is only ever replaced wholesale or extended by one record.
type Collection struct {
	mu      sync.Mutex
	records []models.Measurement
}

// Replace swaps the whole contents for records.
func (c *Collection) Replace(records []models.Measurement) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = slices.Clone(records)
}

// Append adds one record at the end.
func (c *Collection) Append(m models.Measurement) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, m)
}

// Clear empties the collection, as after sign-out.
func (c *Collection) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = nil
}

// All returns a copy of every record in sheet order.
func (c *Collection) All() []models.Measurement {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]models.Measurement, len(c.records))
	copy(out, c.records)
	return out
}

func (c *Collection) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records)
}

// Last returns the most recent record.
func (c *Collection) Last() (models.Measurement, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.records) == 0 {
		return models.Measurement{}, false
	}
	return c.records[len(c.records)-1], true
}

// Recent returns up to n records, newest first. A non-positive n returns all of them.
func (c *Collection) Recent(n int) []models.Measurement {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n <= 0 || n > len(c.records) {
		n = len(c.records)
	}

	out := make([]models.Measurement, 0, n)
	for i := len(c.records) - 1; i >= len(c.records)-n; i-- {
		out = append(out, c.records[i])
	}
	return out
}

// Series returns the values of one metric in sheet order.
func (c *Collection) Series(key models.MetricKey) []float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]float64, 0, len(c.records))
	for _, r := range c.records {
		if v, ok := r.Value(key); ok {
			out = append(out, v)
		}
	}
	return out
}
