package analytics

import (
	"net/url"
	"strconv"
	"strings"
)

// Downstream vocabularies. Values missing from a table fall back to their
// lower-cased literal, except programmes, which are dropped.
var (
	intervalValues = map[string]string{
		"Monthly": "month",
		"Weekly":  "week",
		"Daily":   "day",
	}

	exchangeValues = map[string]string{
		"Incoming": "opportunity",
		"Outgoing": "person",
	}

	programmeIDs = map[string]int{
		"Global Volunteer": 7,
		"Global Talent":    8,
		"Global Teacher":   9,
	}

	aiesecerValues = map[string]string{
		"Yes": "true",
		"No":  "false",
	}
)

func mapOrLower(table map[string]string, value string) string {
	if mapped, ok := table[value]; ok {
		return mapped
	}
	return strings.ToLower(value)
}

// Query encodes the request in the analytics service's parameter format.
func (r Request) Query(accessToken string) url.Values {
	q := url.Values{}
	q.Set("histogram[office_id]", r.OfficeID)
	q.Set("start_date", r.StartDate.Format(dateLayout))
	q.Set("end_date", r.EndDate.Format(dateLayout))
	q.Set("access_token", accessToken)

	if r.Interval != "" {
		q.Set("histogram[interval]", mapOrLower(intervalValues, r.Interval))
	}
	if r.ExchangeType != "" {
		q.Set("histogram[type]", mapOrLower(exchangeValues, r.ExchangeType))
	}
	for _, p := range r.Products {
		if id, ok := programmeIDs[p]; ok {
			q.Add("programmes[]", strconv.Itoa(id))
		}
	}
	if r.AIESECer != "" {
		q.Set("histogram[is_aiesecer]", mapOrLower(aiesecerValues, r.AIESECer))
	}
	return q
}
