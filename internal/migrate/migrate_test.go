package migrate

import (
	"reflect"
	"testing"

	"lnreader/pkg/models"
)

func testPlugins() []models.Plugin {
	return []models.Plugin{
		{ID: "boxnovel", Name: "BoxNovel", Site: "https://boxnovel.com", IconURL: "https://icons/boxnovel.png", Lang: "English"},
		{ID: "wuxiabox", Name: "WuxiaBox", Site: "https://www.wuxiabox.com/", IconURL: "https://icons/wuxiabox.png", Lang: "English"},
		{ID: "royalroad", Name: "RoyalRoad", Site: "https://www.royalroad.com/", IconURL: "https://icons/rr.png"},
	}
}

func testBackup() []models.LegacyNovel {
	return []models.LegacyNovel{
		{
			NovelID:      1,
			SourceURL:    "https://www.boxnovel.com/",
			NovelURL:     "https://boxnovel.com/the-great-novel",
			NovelName:    "The Great Novel",
			NovelCover:   "https://boxnovel.com/cover.jpg",
			NovelSummary: "A summary",
			Genre:        "Action,Fantasy",
			Author:       "Someone",
			Status:       "Ongoing",
			Followed:     1,
		},
		{
			NovelID:    2,
			SourceURL:  "https://www.wuxiap.com/",
			NovelURL:   "https://www.wuxiap.com/novel/martial-peak.html",
			NovelName:  "Martial Peak",
			NovelCover: "https://www.wuxiap.com/cover/mp.jpg",
			Followed:   0,
		},
		{
			NovelID:   3,
			SourceURL: "https://lostsite.example/",
			NovelURL:  "https://lostsite.example/n/1",
			NovelName: "Lost Novel",
			Followed:  1,
		},
		{
			NovelID:   4,
			SourceURL: "https://boxnovel.com",
			NovelURL:  "https://boxnovel.com/second",
			NovelName: "Second",
			Followed:  1,
		},
		{
			NovelID:   5,
			SourceURL: "not a url at all",
			NovelURL:  "",
			NovelName: "Broken",
		},
	}
}

func TestMigrate(t *testing.T) {
	res := Migrate(testBackup(), testPlugins())

	wantMigrated := []models.MigratedNovel{
		{
			ID:        1,
			Path:      "novel/the-great-novel",
			PluginID:  "boxnovel",
			Name:      "The Great Novel",
			Cover:     "https://boxnovel.com/cover.jpg",
			Summary:   "A summary",
			Author:    "Someone",
			Status:    "Ongoing",
			Genres:    "Action,Fantasy",
			InLibrary: true,
		},
		{
			ID:       2,
			Path:     "/novel/martial-peak.html",
			PluginID: "wuxiabox",
			Name:     "Martial Peak",
			Cover:    "https://www.wuxiabox.com/cover/mp.jpg",
		},
		{
			ID:        4,
			Path:      "novel/second",
			PluginID:  "boxnovel",
			Name:      "Second",
			InLibrary: true,
		},
	}
	if !reflect.DeepEqual(res.MigratedNovels, wantMigrated) {
		t.Fatalf("migrated novels:\n got %+v\nwant %+v", res.MigratedNovels, wantMigrated)
	}

	wantUnmatched := []models.UnmatchedEntry{
		{NovelName: "Lost Novel", SourceURL: "https://lostsite.example/", Reason: "No matching plugin"},
		{NovelName: "Broken", SourceURL: "not a url at all", Reason: "No matching plugin"},
	}
	if !reflect.DeepEqual(res.UnmatchedEntries, wantUnmatched) {
		t.Fatalf("unmatched entries:\n got %+v\nwant %+v", res.UnmatchedEntries, wantUnmatched)
	}

	plugins := testPlugins()
	wantPlugins := []models.Plugin{plugins[0], plugins[1]}
	if !reflect.DeepEqual(res.RequiredPlugins, wantPlugins) {
		t.Fatalf("required plugins:\n got %+v\nwant %+v", res.RequiredPlugins, wantPlugins)
	}
}

func TestMigrateInvariants(t *testing.T) {
	records := testBackup()
	res := Migrate(records, testPlugins())

	if got := len(res.MigratedNovels) + len(res.UnmatchedEntries); got != len(records) {
		t.Fatalf("partition: %d migrated + unmatched, want %d", got, len(records))
	}

	count := make(map[string]int)
	for _, p := range res.RequiredPlugins {
		count[p.ID]++
		if count[p.ID] > 1 {
			t.Fatalf("plugin %q listed twice", p.ID)
		}
	}
	for _, n := range res.MigratedNovels {
		if count[n.PluginID] != 1 {
			t.Fatalf("novel %d references plugin %q %d times in required plugins", n.ID, n.PluginID, count[n.PluginID])
		}
		if n.IsLocal || n.TotalPages != 0 {
			t.Fatalf("novel %d: isLocal=%v totalPages=%d", n.ID, n.IsLocal, n.TotalPages)
		}
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	records := testBackup()
	first := Migrate(records, testPlugins())
	second := Migrate(records, testPlugins())
	if !reflect.DeepEqual(first, second) {
		t.Fatal("two runs over the same input differ")
	}
}

func TestMigrateDoesNotMutateInput(t *testing.T) {
	records := testBackup()
	before := testBackup()
	_ = Migrate(records, testPlugins())
	if !reflect.DeepEqual(records, before) {
		t.Fatal("input records were modified")
	}
}

func TestMigrateNoMatch(t *testing.T) {
	res := Migrate([]models.LegacyNovel{{NovelName: "X", SourceURL: "https://nowhere.test/"}}, testPlugins())

	if len(res.MigratedNovels) != 0 || len(res.RequiredPlugins) != 0 {
		t.Fatalf("expected nothing migrated, got %+v", res)
	}
	if len(res.UnmatchedEntries) != 1 || res.UnmatchedEntries[0].Reason != "No matching plugin" {
		t.Fatalf("unexpected unmatched entries: %+v", res.UnmatchedEntries)
	}
}

func TestMigrateEmptyInputHasEmptySlices(t *testing.T) {
	res := Migrate(nil, nil)
	if res.MigratedNovels == nil || res.RequiredPlugins == nil || res.UnmatchedEntries == nil {
		t.Fatalf("expected non-nil empty slices, got %+v", res)
	}
}

func TestFollowedMapsToInLibrary(t *testing.T) {
	plugins := testPlugins()
	for followed, want := range map[int]bool{0: false, 1: true} {
		res := Migrate([]models.LegacyNovel{{
			NovelID:   9,
			SourceURL: "https://boxnovel.com/",
			NovelURL:  "https://boxnovel.com/x",
			Followed:  followed,
		}}, plugins)
		if got := res.MigratedNovels[0].InLibrary; got != want {
			t.Fatalf("followed=%d: inLibrary = %v, want %v", followed, got, want)
		}
	}
}
