// Package backup reads 1.x backup files and writes the upgraded library.
package backup

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"lnreader/pkg/models"
)

var ErrNotArray = errors.New("backup must be a JSON array of novels")

// ReadLegacy parses a 1.x backup: a JSON array of flat novel objects.
// The 1.x app was not strict about types, so numeric fields may arrive as
// numbers or numeric strings and followed may also be a boolean. Missing
// fields stay at their zero value.
func ReadLegacy(r io.Reader) ([]models.LegacyNovel, error) {
	// backups edited on Windows often carry a BOM, sometimes UTF-16
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	b, err := io.ReadAll(transform.NewReader(r, dec))
	if err != nil {
		return nil, fmt.Errorf("read backup: %w", err)
	}

	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] != '[' {
		return nil, ErrNotArray
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(b, &entries); err != nil {
		return nil, fmt.Errorf("parse backup: %w", err)
	}

	out := make([]models.LegacyNovel, 0, len(entries))
	for i, e := range entries {
		var raw legacyEntry
		if err := json.Unmarshal(e, &raw); err != nil {
			return nil, fmt.Errorf("parse backup entry %d: %w", i, err)
		}
		out = append(out, raw.novel())
	}
	return out, nil
}

type legacyEntry struct {
	NovelID      looseInt    `json:"novelId"`
	SourceURL    looseString `json:"sourceUrl"`
	NovelURL     looseString `json:"novelUrl"`
	SourceID     looseInt    `json:"sourceId"`
	Source       looseString `json:"source"`
	NovelName    looseString `json:"novelName"`
	NovelCover   looseString `json:"novelCover"`
	NovelSummary looseString `json:"novelSummary"`
	Genre        looseString `json:"genre"`
	Author       looseString `json:"author"`
	Status       looseString `json:"status"`
	Followed     looseInt    `json:"followed"`
	CategoryIDs  looseString `json:"categoryIds"`
}

func (e *legacyEntry) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] != '{' {
		return errors.New("not an object")
	}
	type plain legacyEntry
	return json.Unmarshal(b, (*plain)(e))
}

func (e legacyEntry) novel() models.LegacyNovel {
	return models.LegacyNovel{
		NovelID:      int64(e.NovelID),
		SourceURL:    string(e.SourceURL),
		NovelURL:     string(e.NovelURL),
		SourceID:     int64(e.SourceID),
		Source:       string(e.Source),
		NovelName:    string(e.NovelName),
		NovelCover:   string(e.NovelCover),
		NovelSummary: string(e.NovelSummary),
		Genre:        string(e.Genre),
		Author:       string(e.Author),
		Status:       string(e.Status),
		Followed:     int(e.Followed),
		CategoryIDs:  string(e.CategoryIDs),
	}
}

// looseInt accepts numbers, numeric strings, booleans and null.
type looseInt int64

func (n *looseInt) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	switch s {
	case "null", `""`, "false":
		*n = 0
		return nil
	case "true":
		*n = 1
		return nil
	}
	s = strings.Trim(s, `"`)

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		*n = looseInt(i)
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) ||
		f < math.MinInt64 || f >= math.MaxInt64 {
		return fmt.Errorf("invalid integer %s", string(b))
	}
	*n = looseInt(f)
	return nil
}

// looseString accepts strings, numbers and null. Numbers keep their JSON text.
type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*s = ""
		return nil
	case len(b) > 0 && b[0] == '"':
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = looseString(v)
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return fmt.Errorf("invalid string %s", string(b))
	}
	*s = looseString(num.String())
	return nil
}
