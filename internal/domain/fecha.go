package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Layouts accepted for dates in request bodies and query strings. Values
// without a zone are read as local time.
var fechaLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Fecha is a time.Time that unmarshals from any of the accepted layouts.
type Fecha struct {
	time.Time
}

func ParseFecha(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range fechaLayouts {
		var (
			t   time.Time
			err error
		)
		if layout == time.RFC3339Nano {
			t, err = time.Parse(layout, s)
		} else {
			t, err = time.ParseInLocation(layout, s, time.Local)
		}
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

func (f *Fecha) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	t, err := ParseFecha(s)
	if err != nil {
		return err
	}
	f.Time = t
	return nil
}

func (f Fecha) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Time)
}
