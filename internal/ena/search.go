// Package ena talks to the ENA portal API: it maps INSDC accessions of every
// supported category to run accessions and fetches run information.
package ena

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/nishad/ffqf/internal/errors"
	"github.com/nishad/ffqf/internal/request"
)

// SearchPath is the portal endpoint all requests go to.
const SearchPath = "search"

// searchForm returns the form shared by every read_run search.
func searchForm(fields ...string) url.Values {
	return url.Values{
		"dataPortal": {"ena"},
		"fields":     {strings.Join(fields, ",")},
		"format":     {"json"},
		"limit":      {"0"},
		"result":     {"read_run"},
	}
}

// decode unmarshals a JSON array response. The portal answers an empty body
// when nothing matched.
func decode(op errors.Op, resp *request.Response, v interface{}) error {
	body := bytes.TrimSpace(resp.Body)
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return errors.E(op, errors.KindParse, err, "invalid ENA portal response")
	}
	return nil
}
