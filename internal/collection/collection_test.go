package collection

import (
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/starford/notestxt/internal/apperr"
	"github.com/starford/notestxt/internal/testutil"
)

func testConfig(clock *testutil.Clock) Config {
	return Config{Clock: clock.Now}
}

func newClock() *testutil.Clock {
	return testutil.NewClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.Local))
}

func TestUpdate_LaterModifiedWins(t *testing.T) {
	dir := testutil.NoteFolder(t, map[string]string{
		"notes.a.txt": "---- id:x, c:2024-01-01 09:00:00, m:2024-01-01 10:00:00\nold text\n",
		"notes.b.txt": "---- id:x, c:2024-01-01 09:00:00, m:2024-01-02 09:00:00\nnew text\n",
	})
	for _, order := range [][2]string{{"notes.a.txt", "notes.b.txt"}, {"notes.b.txt", "notes.a.txt"}} {
		c, err := New(Config{}, filepath.Join(dir, order[0]), filepath.Join(dir, order[1]))
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		n, ok := c.Get("x")
		if !ok {
			t.Fatal("note x missing")
		}
		if n.Text() != "new text\n" {
			t.Errorf("order %v: text = %q, want the later copy", order, n.Text())
		}
		if c.Len() != 1 {
			t.Errorf("len = %d, want 1", c.Len())
		}
	}
}

func TestUpdate_TieKeepsLastMerged(t *testing.T) {
	dir := testutil.NoteFolder(t, map[string]string{
		"notes.a.txt": "---- id:x, c:, m:2024-01-01 10:00:00\nfrom a\n",
		"notes.b.txt": "---- id:x, c:, m:2024-01-01 10:00:00\nfrom b\n",
	})
	c, err := New(Config{}, filepath.Join(dir, "notes.a.txt"), filepath.Join(dir, "notes.b.txt"))
	if err != nil {
		t.Fatal(err)
	}
	n, _ := c.Get("x")
	if n.Text() != "from b\n" {
		t.Errorf("text = %q, want the copy merged last", n.Text())
	}
}

func TestUpdate_ReportsChangedFiles(t *testing.T) {
	dir := testutil.NoteFolder(t, map[string]string{
		"notes.a.txt": "---- id:1, c:, m:\none\n",
		"notes.b.txt": "---- id:2, c:, m:\ntwo\n",
	})
	a, b := filepath.Join(dir, "notes.a.txt"), filepath.Join(dir, "notes.b.txt")
	c, err := New(Config{}, a, b)
	if err != nil {
		t.Fatal(err)
	}

	changed, err := c.Update()
	if err != nil || len(changed) != 0 {
		t.Fatalf("idle update = %v, %v", changed, err)
	}

	testutil.WriteFile(t, b, "---- id:2, c:, m:2024-02-02 00:00:00\ntwo edited\n---- id:3, c:, m:\nthree\n")
	changed, err = c.Update()
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(changed, []string{b}) {
		t.Errorf("changed = %v, want [%s]", changed, b)
	}
	if n, _ := c.Get("2"); n == nil || n.Text() != "two edited\n" {
		t.Errorf("note 2 not refreshed")
	}
	if c.Len() != 3 {
		t.Errorf("len = %d, want 3", c.Len())
	}
}

func TestUpdate_ExternalDeletionPropagates(t *testing.T) {
	dir := testutil.NoteFolder(t, map[string]string{
		"notes.a.txt": "---- id:1, c:, m:\none\n---- id:2, c:, m:\ntwo\n",
	})
	a := filepath.Join(dir, "notes.a.txt")
	c, err := New(Config{}, a)
	if err != nil {
		t.Fatal(err)
	}
	testutil.WriteFile(t, a, "---- id:1, c:, m:\none\n")
	if _, err := c.Update(); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Get("2"); ok {
		t.Error("note removed from every file should leave the collection")
	}
}

func TestUpdate_RevertedCopyReplacesStaleWinner(t *testing.T) {
	dir := testutil.NoteFolder(t, map[string]string{
		"notes.a.txt": "---- id:x, c:, m:2024-03-01 00:00:00\nnewer\n",
	})
	a := filepath.Join(dir, "notes.a.txt")
	c, err := New(Config{}, a)
	if err != nil {
		t.Fatal(err)
	}
	testutil.WriteFile(t, a, "---- id:x, c:, m:2024-01-01 00:00:00\nrestored\n")
	if _, err := c.Update(); err != nil {
		t.Fatal(err)
	}
	n, _ := c.Get("x")
	if n == nil || n.Text() != "restored\n" {
		t.Errorf("collection kept a note no file holds anymore")
	}
}

func TestNew_MissingFile(t *testing.T) {
	_, err := New(Config{}, filepath.Join(t.TempDir(), "nope.txt"))
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestFromFolder(t *testing.T) {
	dir := testutil.NoteFolder(t, map[string]string{
		"notes.other.txt": "---- id:o, c:, m:\nother machine\n",
		"todo.work.txt":   "---- id:w, c:, m:\nwork\n",
		"readme.txt":      "not a note file\n",
		".hidden.x.txt":   "---- id:h, c:, m:\nhidden\n",
		"notes.bak":       "---- id:b, c:, m:\nbackup\n",
	})
	c, err := FromFolder(Config{}, dir, "laptop")
	if err != nil {
		t.Fatalf("FromFolder: %v", err)
	}
	main := filepath.Join(dir, "notes.laptop.txt")
	if c.Primary() != main {
		t.Errorf("primary = %q", c.Primary())
	}
	if testutil.ReadFile(t, main) != "" {
		t.Error("main file should be created empty")
	}
	want := []string{main, filepath.Join(dir, "notes.other.txt"), filepath.Join(dir, "todo.work.txt")}
	if !slices.Equal(c.Files(), want) {
		t.Errorf("files = %v, want %v", c.Files(), want)
	}
	if c.Len() != 2 {
		t.Errorf("len = %d, want 2", c.Len())
	}
}

func TestFromFolder_MissingFolder(t *testing.T) {
	_, err := FromFolder(Config{}, filepath.Join(t.TempDir(), "gone"), "laptop")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestNewNote_SaveGoesToPrimary(t *testing.T) {
	clock := newClock()
	dir := testutil.NoteFolder(t, nil)
	c, err := FromFolder(testConfig(clock), dir, "laptop")
	if err != nil {
		t.Fatal(err)
	}
	n := c.NewNote()
	if got, ok := c.Get(n.ID()); !ok || got != n {
		t.Fatal("new note not registered")
	}
	if n.CreatedStr() != "2024-06-01 12:00:00" {
		t.Errorf("createdStr = %q", n.CreatedStr())
	}

	n.SetText("! call the bank #todo")
	clock.Advance(time.Minute)
	if err := c.SaveNote(n, false); err != nil {
		t.Fatal(err)
	}
	if n.ModifiedStr() != "2024-06-01 12:01:00" {
		t.Errorf("modifiedStr = %q", n.ModifiedStr())
	}
	content := testutil.ReadFile(t, filepath.Join(dir, "notes.laptop.txt"))
	want := "\n---- id:" + n.ID() + ", c:2024-06-01 12:00:00, m:2024-06-01 12:01:00\n! call the bank #todo\n"
	if content != want {
		t.Errorf("file = %q, want %q", content, want)
	}
	if changed, _ := c.Update(); len(changed) != 0 {
		t.Errorf("own save reported as change: %v", changed)
	}
}

func TestSaveNote_UnchangedIsNoop(t *testing.T) {
	dir := testutil.NoteFolder(t, map[string]string{
		"notes.laptop.txt": "---- id:1, c:, m:2020-01-01 00:00:00\none\n",
	})
	c, err := FromFolder(testConfig(newClock()), dir, "laptop")
	if err != nil {
		t.Fatal(err)
	}
	n, _ := c.Get("1")
	if err := c.SaveNote(n, false); err != nil {
		t.Fatal(err)
	}
	if n.ModifiedStr() != "2020-01-01 00:00:00" {
		t.Errorf("unchanged note was stamped: %q", n.ModifiedStr())
	}
	if err := c.SaveNote(n, true); err != nil {
		t.Fatal(err)
	}
	if n.ModifiedStr() != "2024-06-01 12:00:00" {
		t.Errorf("forced save not stamped: %q", n.ModifiedStr())
	}
}

func TestSaveNote_MovesSecondaryNoteToPrimary(t *testing.T) {
	dir := testutil.NoteFolder(t, map[string]string{
		"notes.desktop.txt": "---- id:s, c:2024-01-01 00:00:00, m:\nfrom desktop\n",
	})
	c, err := FromFolder(testConfig(newClock()), dir, "laptop")
	if err != nil {
		t.Fatal(err)
	}
	n, _ := c.Get("s")
	n.SetText("edited on laptop")
	if err := c.SaveNote(n, false); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(testutil.ReadFile(t, filepath.Join(dir, "notes.laptop.txt")), "edited on laptop") {
		t.Error("edited note should be written to the primary file")
	}
	if testutil.ReadFile(t, filepath.Join(dir, "notes.desktop.txt")) != "---- id:s, c:2024-01-01 00:00:00, m:\nfrom desktop\n" {
		t.Error("secondary file must not be rewritten by an edit")
	}

	// The desktop copy is older and loses the next merge.
	testutil.WriteFile(t, filepath.Join(dir, "notes.desktop.txt"), "---- id:s, c:2024-01-01 00:00:00, m:\nfrom desktop\n")
	if _, err := c.Update(); err != nil {
		t.Fatal(err)
	}
	if got, _ := c.Get("s"); got.Text() != "edited on laptop\n" {
		t.Errorf("text = %q", got.Text())
	}
}

func TestSaveNote_ReplacesOlderPrimaryCopy(t *testing.T) {
	dir := testutil.NoteFolder(t, map[string]string{
		"notes.laptop.txt":  "---- id:x, c:2024-01-01 00:00:00, m:2024-01-01 10:00:00
old laptop copy
",
		"notes.desktop.txt": "---- id:x, c:2024-01-01 00:00:00, m:2024-01-02 10:00:00
newer desktop copy
",
	})
	c, err := FromFolder(testConfig(newClock()), dir, "laptop")
	if err != nil {
		t.Fatal(err)
	}
	n, _ := c.Get("x")
	if n.Text() != "newer desktop copy
" {
		t.Fatalf("winner = %q", n.Text())
	}
	n.SetText("edited on laptop")
	if err := c.SaveNote(n, false); err != nil {
		t.Fatal(err)
	}

	content := testutil.ReadFile(t, filepath.Join(dir, "notes.laptop.txt"))
	if strings.Count(content, "id:x,") != 1 {
		t.Errorf("primary holds %d records for x:\n%s", strings.Count(content, "id:x,"), content)
	}
	if strings.Contains(content, "old laptop copy") {
		t.Errorf("stale copy still written:\n%s", content)
	}
}

func TestDeleteNote(t *testing.T) {
	dir := testutil.NoteFolder(t, map[string]string{
		"notes.laptop.txt":  "---- id:1, c:, m:\none\n---- id:2, c:, m:\ntwo\n",
		"notes.desktop.txt": "---- id:1, c:, m:\none\n",
	})
	c, err := FromFolder(testConfig(newClock()), dir, "laptop")
	if err != nil {
		t.Fatal(err)
	}
	n, _ := c.Get("1")
	if err := c.DeleteNote(n); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Get("1"); ok {
		t.Error("deleted note still present")
	}
	if strings.Contains(testutil.ReadFile(t, filepath.Join(dir, "notes.desktop.txt")), "id:1") {
		t.Error("copy in secondary file should be removed too")
	}
	if err := c.DeleteNote(n); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
	if changed, _ := c.Update(); len(changed) != 0 {
		t.Errorf("own delete reported as change: %v", changed)
	}
}

func TestSetCreated(t *testing.T) {
	dir := testutil.NoteFolder(t, map[string]string{
		"notes.laptop.txt": "---- id:1, c:, m:\none\n",
	})
	c, err := FromFolder(testConfig(newClock()), dir, "laptop")
	if err != nil {
		t.Fatal(err)
	}
	n, _ := c.Get("1")
	if err := c.SetCreated(n, "2019-12-31"); err != nil {
		t.Fatal(err)
	}
	if n.CreatedStr() != "2019-12-31 00:00:00" {
		t.Errorf("createdStr = %q", n.CreatedStr())
	}
	var pw *apperr.ParseWarning
	if err := c.SetCreated(n, "last week"); !errors.As(err, &pw) {
		t.Errorf("err = %v, want ParseWarning", err)
	}
	if n.CreatedStr() != "2019-12-31 00:00:00" {
		t.Error("rejected date must not change the note")
	}
}

func TestStatsTagsDirty(t *testing.T) {
	dir := testutil.NoteFolder(t, map[string]string{
		"notes.laptop.txt": "---- id:1, c:, m:\none #work\n---- id:2, c:, m:\n. secret #private\n---- id:3, c:, m:\nthree #work #home\n",
	})
	c, err := FromFolder(testConfig(newClock()), dir, "laptop")
	if err != nil {
		t.Fatal(err)
	}
	visible, hidden := c.Stats()
	if visible != 2 || hidden != 1 {
		t.Errorf("stats = %d/%d, want 2/1", visible, hidden)
	}
	if got := c.Tags(); !slices.Equal(got, []string{"#home", "#private", "#work"}) {
		t.Errorf("tags = %v", got)
	}
	if len(c.Dirty()) != 0 {
		t.Error("no note should be dirty after load")
	}
	n, _ := c.Get("3")
	n.SetText("changed")
	if d := c.Dirty(); len(d) != 1 || d[0] != n {
		t.Errorf("dirty = %v", d)
	}
}

func TestAddFile(t *testing.T) {
	dir := testutil.NoteFolder(t, nil)
	c, err := FromFolder(Config{}, dir, "laptop")
	if err != nil {
		t.Fatal(err)
	}
	late := filepath.Join(dir, "notes.phone.txt")
	if err := c.AddFile(late); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("adding a missing file: err = %v", err)
	}
	testutil.WriteFile(t, late, "---- id:p, c:, m:\nfrom phone\n")
	if err := c.AddFile(late); err != nil {
		t.Fatal(err)
	}
	if err := c.AddFile(late); err != nil {
		t.Fatal(err)
	}
	if len(c.Files()) != 2 {
		t.Errorf("files = %v", c.Files())
	}
	changed, err := c.Update()
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(changed, []string{late}) {
		t.Errorf("changed = %v", changed)
	}
	if _, ok := c.Get("p"); !ok {
		t.Error("note from added file missing")
	}
}
