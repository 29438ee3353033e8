package analytics

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/jrsteele09/go-analytics-bff/internal/errors"
)

const dateLayout = "2006-01-02"

// Accepted vocabularies for the enumerated query fields.
var (
	ExchangeTypes = []string{"Incoming", "Outgoing"}
	Intervals     = []string{"Daily", "Weekly", "Monthly"}
	Products      = []string{"Global Volunteer", "Global Talent", "Global Teacher"}
	AIESECerFlags = []string{"Yes", "No"}
)

// DefaultInterval applies when the caller sends no interval.
const DefaultInterval = "Monthly"

// Request is the caller's analytics query. Empty optional fields are left out of the
// downstream query entirely.
type Request struct {
	OfficeID     string
	StartDate    time.Time
	EndDate      time.Time
	ExchangeType string
	Interval     string
	Products     []string
	AIESECer     string
}

// ParseRequest reads and validates a Request from the inbound query string.
func ParseRequest(q url.Values) (Request, error) {
	var problems []string

	req := Request{
		OfficeID:     strings.TrimSpace(q.Get("officeId")),
		ExchangeType: q.Get("exchangeType"),
		Interval:     q.Get("interval"),
		AIESECer:     q.Get("aiesecer"),
		Products:     splitList(append(q["products"], q["products[]"]...)),
	}
	if req.OfficeID == "" {
		problems = append(problems, "officeId is required")
	}

	var err error
	if req.StartDate, err = parseDate(q, "startDate"); err != nil {
		problems = append(problems, err.Error())
	}
	if req.EndDate, err = parseDate(q, "endDate"); err != nil {
		problems = append(problems, err.Error())
	}

	if req.Interval == "" {
		req.Interval = DefaultInterval
	}
	problems = appendIfInvalid(problems, "exchangeType", req.ExchangeType, ExchangeTypes)
	problems = appendIfInvalid(problems, "interval", req.Interval, Intervals)
	problems = appendIfInvalid(problems, "aiesecer", req.AIESECer, AIESECerFlags)
	for _, p := range req.Products {
		problems = appendIfInvalid(problems, "products", p, Products)
	}

	if len(problems) > 0 {
		return Request{}, errors.Wrapf(errors.ErrInvalidRequest, "%s", strings.Join(problems, "; "))
	}
	return req, nil
}

func parseDate(q url.Values, key string) (time.Time, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return time.Time{}, fmt.Errorf("%s is required", key)
	}
	d, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be a YYYY-MM-DD date", key)
	}
	return d, nil
}

func appendIfInvalid(problems []string, field, value string, allowed []string) []string {
	if value == "" || slices.Contains(allowed, value) {
		return problems
	}
	return append(problems, fmt.Sprintf("%s must be one of %s", field, strings.Join(allowed, ", ")))
}

// splitList accepts repeated keys as well as comma separated values.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
