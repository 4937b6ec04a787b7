package backup

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"golang.org/x/text/encoding/unicode"

	"lnreader/pkg/models"
)

const legacyBackup = `[
  {
    "novelId": 12,
    "sourceUrl": "https://www.wuxiap.com/",
    "novelUrl": "https://www.wuxiap.com/novel/martial-peak.html",
    "sourceId": 45,
    "source": "WuxiaWorld.Site",
    "novelName": "Martial Peak",
    "novelCover": "https://www.wuxiap.com/cover.jpg",
    "novelSummary": null,
    "genre": "Action,Martial Arts",
    "author": "Momo",
    "status": "Ongoing",
    "followed": 1,
    "categoryIds": "[1]"
  },
  {
    "novelId": "13",
    "sourceUrl": "https://boxnovel.com/",
    "novelUrl": "https://boxnovel.com/x",
    "sourceId": 1.0,
    "source": "BoxNovel",
    "novelName": 2077,
    "followed": false
  },
  {"novelId": 14, "novelName": "Bool followed", "followed": true}
]`

func TestReadLegacy(t *testing.T) {
	got, err := ReadLegacy(strings.NewReader(legacyBackup))
	if err != nil {
		t.Fatalf("ReadLegacy: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d novels", len(got))
	}

	want := models.LegacyNovel{
		NovelID:     12,
		SourceURL:   "https://www.wuxiap.com/",
		NovelURL:    "https://www.wuxiap.com/novel/martial-peak.html",
		SourceID:    45,
		Source:      "WuxiaWorld.Site",
		NovelName:   "Martial Peak",
		NovelCover:  "https://www.wuxiap.com/cover.jpg",
		Genre:       "Action,Martial Arts",
		Author:      "Momo",
		Status:      "Ongoing",
		Followed:    1,
		CategoryIDs: "[1]",
	}
	if got[0] != want {
		t.Fatalf("first novel:\n got %+v\nwant %+v", got[0], want)
	}

	if got[1].NovelID != 13 || got[1].SourceID != 1 || got[1].NovelName != "2077" || got[1].Followed != 0 {
		t.Fatalf("coerced novel = %+v", got[1])
	}
	if got[2].Followed != 1 {
		t.Fatalf("followed:true = %d", got[2].Followed)
	}
}

func TestReadLegacyWithBOM(t *testing.T) {
	input := "\ufeff" + `[{"novelId": 1, "novelName": "A"}]`
	got, err := ReadLegacy(strings.NewReader(input))
	if err != nil || len(got) != 1 || got[0].NovelName != "A" {
		t.Fatalf("utf-8 bom: %+v, %v", got, err)
	}

	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	utf16, err := enc.String(`[{"novelId": 2, "novelName": "B"}]`)
	if err != nil {
		t.Fatal(err)
	}
	got, err = ReadLegacy(strings.NewReader(utf16))
	if err != nil || len(got) != 1 || got[0].NovelID != 2 {
		t.Fatalf("utf-16 bom: %+v, %v", got, err)
	}
}

func TestReadLegacyErrors(t *testing.T) {
	cases := map[string]string{
		"object":            `{"novels": []}`,
		"empty":             "   ",
		"truncated":         `[{"novelId": 1`,
		"element":           `[{"novelId": 1}, "oops"]`,
		"null element":      `[null]`,
		"bad number":        `[{"novelId": "abc"}]`,
		"fractional id":     `[{"novelId": 1.5}]`,
		"id out of range":   `[{"novelId": 1e30}]`,
		"negative overflow": `[{"sourceId": "-1e19"}]`,
		"object as field":   `[{"novelName": {"x": 1}}]`,
	}

	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := ReadLegacy(strings.NewReader(input)); err == nil {
				t.Fatalf("expected error for %s", input)
			}
		})
	}

	if _, err := ReadLegacy(strings.NewReader(`{}`)); !errors.Is(err, ErrNotArray) {
		t.Fatalf("expected ErrNotArray, got %v", err)
	}
}

func TestReadLegacyEmptyArray(t *testing.T) {
	got, err := ReadLegacy(strings.NewReader(`[]`))
	if err != nil || got == nil || len(got) != 0 {
		t.Fatalf("got %+v, %v", got, err)
	}
}

func TestWriteMigrated(t *testing.T) {
	var buf bytes.Buffer
	err := WriteMigrated(&buf, []models.MigratedNovel{{ID: 1, Path: "novel/x", PluginID: "boxnovel", Name: "X", InLibrary: true}})
	if err != nil {
		t.Fatalf("WriteMigrated: %v", err)
	}

	want := `[
  {
    "id": 1,
    "path": "novel/x",
    "pluginId": "boxnovel",
    "name": "X",
    "inLibrary": true,
    "isLocal": false,
    "totalPages": 0
  }
]`
	if buf.String() != want {
		t.Fatalf("got:\n%s\nwant:\n%s", buf.String(), want)
	}

	buf.Reset()
	if err := WriteMigrated(&buf, nil); err != nil || buf.String() != "[]" {
		t.Fatalf("nil novels: %q, %v", buf.String(), err)
	}
}

func TestWriteUnmatchedCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteUnmatchedCSV(&buf, []models.UnmatchedEntry{
		{NovelName: "Lost, Found", SourceURL: "https://lost.example/", Reason: models.UnmatchedNoPlugin},
	})
	if err != nil {
		t.Fatal(err)
	}
	want := "novel_name,source_url,reason\n\"Lost, Found\",https://lost.example/,No matching plugin\n"
	if buf.String() != want {
		t.Fatalf("got %q", buf.String())
	}
}
