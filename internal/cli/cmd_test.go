package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alexanderramin/atelier/internal/domain"
	"github.com/alexanderramin/atelier/internal/repository"
	"github.com/alexanderramin/atelier/internal/service"
	"github.com/alexanderramin/atelier/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// testApp wires an App over an in-memory SQLite store and returns the
// adapter for seeding.
func testApp(t *testing.T) (*App, repository.EntityRepo) {
	t.Helper()
	repo := repository.NewSQLiteEntityRepo(testutil.NewTestDB(t))
	return &App{Entities: service.NewEntityService(repo)}, repo
}

// testFlatApp wires an App over the flat variant on a memory key store.
func testFlatApp(t *testing.T) (*App, repository.EntityRepo) {
	t.Helper()
	repo := repository.NewFlatEntityRepo(testutil.NewMemoryKV())
	return &App{Entities: service.NewEntityService(repo)}, repo
}

// executeCmd runs a cobra command and captures stdout/stderr.
func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func list(t *testing.T, repo repository.EntityRepo, kind domain.Kind, parentID string) []string {
	t.Helper()
	items, err := repo.ListChildren(context.Background(), kind, parentID)
	require.NoError(t, err)
	return testutil.Texts(items)
}

// isolateConfig points config loading at an empty home and clears every
// ATELIER_* variable.
func isolateConfig(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, name := range []string{
		"ATELIER_CONFIG", "ATELIER_BACKEND", "ATELIER_DB", "ATELIER_FLAT_DRIVER",
		"ATELIER_DATA_DIR", "ATELIER_S3_BUCKET", "ATELIER_LOG",
	} {
		t.Setenv(name, "")
	}
}

// --- add / list ---

func TestClientAdd(t *testing.T) {
	app, repo := testApp(t)

	out, err := executeCmd(t, app, "client", "add", "Alice", "Smith")
	require.NoError(t, err)
	assert.Contains(t, out, `Added client "Alice Smith"`)
	assert.Equal(t, []string{"Alice Smith"}, list(t, repo, domain.KindClient, ""))
}

func TestClientAdd_BlankRejected(t *testing.T) {
	app, repo := testApp(t)

	_, err := executeCmd(t, app, "client", "add", "   ")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, list(t, repo, domain.KindClient, ""))
}

func TestInstrumentAdd_RequiresClientFlag(t *testing.T) {
	app, _ := testApp(t)

	_, err := executeCmd(t, app, "instrument", "add", "Violin")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"client" not set`)
}

func TestInstrumentAdd_UnknownClient(t *testing.T) {
	app, _ := testApp(t)

	_, err := executeCmd(t, app, "instrument", "add", "--client", "99", "Violin")
	assert.ErrorIs(t, err, domain.ErrParentNotFound)
}

func TestNoteAdd_UnderInstrument(t *testing.T) {
	app, repo := testApp(t)
	seeded := testutil.SeedClient(t, repo, "Alice", testutil.WithInstrument("Violin"))
	violin := seeded.Instrument("Violin")

	out, err := executeCmd(t, app, "note", "add", "--instrument", violin.ID, "tune", "E", "string")
	require.NoError(t, err)
	assert.Contains(t, out, `Added note "tune E string"`)
	assert.Equal(t, []string{"tune E string"}, list(t, repo, domain.KindNote, violin.ID))
}

func TestClientList_NewestFirst(t *testing.T) {
	app, repo := testApp(t)
	testutil.SeedClient(t, repo, "Alice")
	testutil.SeedClient(t, repo, "Bob")

	out, err := executeCmd(t, app, "client", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Less(t, strings.Index(out, "Bob"), strings.Index(out, "Alice"))
}

func TestClientList_Empty(t *testing.T) {
	app, _ := testApp(t)

	out, err := executeCmd(t, app, "client", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No clients.")
}

func TestNoteList_Search(t *testing.T) {
	app, repo := testFlatApp(t)
	seeded := testutil.SeedClient(t, repo, "Alice",
		testutil.WithInstrument("Violin", "Tune E string", "new bridge", "check e strings"))
	violin := seeded.Instrument("Violin")

	out, err := executeCmd(t, app, "note", "list", "--instrument", violin.ID, "--search", "E STR")
	require.NoError(t, err)
	assert.Contains(t, out, "Tune E string")
	assert.Contains(t, out, "check e strings")
	assert.NotContains(t, out, "new bridge")
}

// --- rm ---

func TestClientRemove_ConfirmedCascades(t *testing.T) {
	app, repo := testApp(t)
	alice := testutil.SeedClient(t, repo, "Alice", testutil.WithInstrument("Violin", "tune E string"))
	testutil.SeedClient(t, repo, "Bob", testutil.WithInstrument("Cello"))
	app.In = strings.NewReader("y\n")

	out, err := executeCmd(t, app, "client", "rm", alice.Client.ID)
	require.NoError(t, err)
	assert.Contains(t, out, `Remove "Alice" with its instruments and notes? [y/N]: `)
	assert.Contains(t, out, "Removed: Alice")

	assert.Equal(t, []string{"Bob"}, list(t, repo, domain.KindClient, ""))
	assert.Empty(t, list(t, repo, domain.KindInstrument, alice.Client.ID))
	assert.Empty(t, list(t, repo, domain.KindNote, alice.Instrument("Violin").ID))
}

func TestClientRemove_DeclinedKeepsEverything(t *testing.T) {
	app, repo := testApp(t)
	alice := testutil.SeedClient(t, repo, "Alice", testutil.WithInstrument("Violin"))
	app.In = strings.NewReader("n\n")

	out, err := executeCmd(t, app, "client", "rm", alice.Client.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Cancelled.")
	assert.Equal(t, []string{"Alice"}, list(t, repo, domain.KindClient, ""))
	assert.Equal(t, []string{"Violin"}, list(t, repo, domain.KindInstrument, alice.Client.ID))
}

func TestInstrumentRemove_YesSkipsPrompt(t *testing.T) {
	app, repo := testFlatApp(t)
	alice := testutil.SeedClient(t, repo, "Alice",
		testutil.WithInstrument("Violin", "tune E string"),
		testutil.WithInstrument("Viola", "rehair bow"))
	violin := alice.Instrument("Violin")
	viola := alice.Instrument("Viola")

	out, err := executeCmd(t, app, "instrument", "rm", "--yes", violin.ID)
	require.NoError(t, err)
	assert.NotContains(t, out, "[y/N]")
	assert.Contains(t, out, "Removed: Violin")

	assert.Equal(t, []string{"Viola"}, list(t, repo, domain.KindInstrument, alice.Client.ID))
	assert.Empty(t, list(t, repo, domain.KindNote, violin.ID))
	assert.Equal(t, []string{"rehair bow"}, list(t, repo, domain.KindNote, viola.ID))
}

func TestNoteRemove_PromptNamesNote(t *testing.T) {
	app, repo := testApp(t)
	alice := testutil.SeedClient(t, repo, "Alice", testutil.WithInstrument("Violin", "tune E string"))
	note := alice.Notes[alice.Instrument("Violin").ID][0]
	app.In = strings.NewReader("yes\n")

	out, err := executeCmd(t, app, "note", "rm", note.ID)
	require.NoError(t, err)
	assert.Contains(t, out, `Remove "tune E string"? [y/N]: `)
	assert.Empty(t, list(t, repo, domain.KindNote, note.ParentID))
}

func TestRemove_UnknownID(t *testing.T) {
	app, _ := testApp(t)

	_, err := executeCmd(t, app, "client", "rm", "--yes", "42")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// --- edit ---

func TestNoteEdit(t *testing.T) {
	app, repo := testFlatApp(t)
	alice := testutil.SeedClient(t, repo, "Alice", testutil.WithInstrument("Violin", "tune E string"))
	note := alice.Notes[alice.Instrument("Violin").ID][0]

	out, err := executeCmd(t, app, "note", "edit", note.ID, "tune", "A", "string")
	require.NoError(t, err)
	assert.Contains(t, out, "Updated note")

	got, err := repo.GetByID(context.Background(), domain.KindNote, note.ID)
	require.NoError(t, err)
	assert.Equal(t, "tune A string", got.Text)
	assert.Equal(t, note.CreatedAt, got.CreatedAt)
	assert.Equal(t, note.ParentID, got.ParentID)
}

func TestNoteEdit_BlankRejected(t *testing.T) {
	app, repo := testApp(t)
	alice := testutil.SeedClient(t, repo, "Alice", testutil.WithInstrument("Violin", "tune E string"))
	note := alice.Notes[alice.Instrument("Violin").ID][0]

	_, err := executeCmd(t, app, "note", "edit", note.ID, " ")
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, []string{"tune E string"}, list(t, repo, domain.KindNote, note.ParentID))
}

func TestOnlyNotesHaveEdit(t *testing.T) {
	app, _ := testApp(t)
	root := NewRootCmd(app)

	for _, name := range []string{"client", "instrument"} {
		cmd, _, err := root.Find([]string{name, "edit"})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name(), "%s has no edit subcommand", name)
	}
	cmd, _, err := root.Find([]string{"note", "edit"})
	require.NoError(t, err)
	assert.Equal(t, "edit", cmd.Name())
}

// --- export / tree ---

func TestExport_YAMLToStdout(t *testing.T) {
	app, repo := testApp(t)
	testutil.SeedClient(t, repo, "Alice", testutil.WithInstrument("Violin", "tune E string"))

	out, err := executeCmd(t, app, "export")
	require.NoError(t, err)

	var doc struct {
		Clients []struct {
			Name        string `yaml:"name"`
			Instruments []struct {
				Name  string `yaml:"name"`
				Notes []struct {
					Text string `yaml:"text"`
				} `yaml:"notes"`
			} `yaml:"instruments"`
		} `yaml:"clients"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	require.Len(t, doc.Clients, 1)
	assert.Equal(t, "Alice", doc.Clients[0].Name)
	require.Len(t, doc.Clients[0].Instruments, 1)
	assert.Equal(t, "tune E string", doc.Clients[0].Instruments[0].Notes[0].Text)
}

func TestExport_JSONToFile(t *testing.T) {
	app, repo := testFlatApp(t)
	testutil.SeedClient(t, repo, "Alice")
	testutil.SeedClient(t, repo, "Bob")
	path := filepath.Join(t.TempDir(), "atelier.json")

	out, err := executeCmd(t, app, "export", "--format", "json", "--out", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 2 clients")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc struct {
		Clients []struct {
			Name      string `json:"name"`
			CreatedAt string `json:"createdAt"`
		} `json:"clients"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Len(t, doc.Clients, 2)
	assert.Equal(t, "Bob", doc.Clients[0].Name)
	assert.NotEmpty(t, doc.Clients[0].CreatedAt)
}

func TestExport_UnknownFormat(t *testing.T) {
	app, _ := testApp(t)

	_, err := executeCmd(t, app, "export", "--format", "toml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown export format")
}

func TestImport_FromExport(t *testing.T) {
	src, srcRepo := testApp(t)
	testutil.SeedClient(t, srcRepo, "Alice", testutil.WithInstrument("Violin", "tune E string", "new chinrest"))
	testutil.SeedClient(t, srcRepo, "Bob")
	path := filepath.Join(t.TempDir(), "atelier.yaml")
	_, err := executeCmd(t, src, "export", "--out", path)
	require.NoError(t, err)

	dst, dstRepo := testFlatApp(t)
	out, err := executeCmd(t, dst, "import", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 clients, 1 instruments, 2 notes")

	assert.Equal(t, []string{"Bob", "Alice"}, list(t, dstRepo, domain.KindClient, ""))
	clients, err := dstRepo.ListChildren(context.Background(), domain.KindClient, "")
	require.NoError(t, err)
	instruments, err := dstRepo.ListChildren(context.Background(), domain.KindInstrument, clients[1].ID)
	require.NoError(t, err)
	require.Len(t, instruments, 1)
	assert.Equal(t, []string{"new chinrest", "tune E string"}, list(t, dstRepo, domain.KindNote, instruments[0].ID))
}

func TestImport_InvalidDocument(t *testing.T) {
	app, repo := testApp(t)
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"clients":[{"name":"Alice","instruments":[{"name":" ","notes":[]}]}]}`), 0644))

	_, err := executeCmd(t, app, "import", path)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "clients[0].instruments[0].name is required")
	assert.Empty(t, list(t, repo, domain.KindClient, ""))
}

func TestImport_MissingFile(t *testing.T) {
	app, _ := testApp(t)

	_, err := executeCmd(t, app, "import", filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opening import file")
}

func TestTree(t *testing.T) {
	app, repo := testApp(t)
	testutil.SeedClient(t, repo, "Alice",
		testutil.WithInstrument("Violin", "tune E string"),
		testutil.WithInstrument("Cello"))

	out, err := executeCmd(t, app, "tree")
	require.NoError(t, err)
	for _, want := range []string{"Alice", "├─ Cello", "└─ Violin", "└─ tune E string"} {
		assert.Contains(t, out, want)
	}
}

func TestTree_Empty(t *testing.T) {
	app, _ := testApp(t)

	out, err := executeCmd(t, app, "tree")
	require.NoError(t, err)
	assert.Contains(t, out, "No clients.")
}

// --- root / store opening ---

func TestRoot_NonInteractivePrintsHelp(t *testing.T) {
	app, _ := testApp(t)

	out, err := executeCmd(t, app)
	require.NoError(t, err)
	assert.Contains(t, out, "Usage:")
	assert.Contains(t, out, "instrument")
}

func TestRoot_OpensFlatFileStoreFromFlags(t *testing.T) {
	isolateConfig(t)
	dataDir := t.TempDir()
	flags := []string{"--backend", "flat", "--flat-driver", "file", "--data-dir", dataDir}

	_, err := executeCmd(t, &App{}, append(flags, "client", "add", "Alice")...)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dataDir, "clients.json"))

	out, err := executeCmd(t, &App{}, append(flags, "client", "list")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Alice")
}

func TestRoot_OpensSQLiteFromFlags(t *testing.T) {
	isolateConfig(t)
	dbPath := filepath.Join(t.TempDir(), "atelier.db")

	app := &App{}
	_, err := executeCmd(t, app, "--backend", "sqlite", "--db", dbPath, "client", "add", "Alice")
	require.NoError(t, err)
	assert.Nil(t, app.Entities, "store is released after the command")
	assert.Equal(t, dbPath, app.Config.DBPath)

	out, err := executeCmd(t, app, "--db", dbPath, "client", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Alice")
}

func TestRoot_EnvSelectsBackend(t *testing.T) {
	isolateConfig(t)
	dataDir := t.TempDir()
	t.Setenv("ATELIER_BACKEND", "flat")
	t.Setenv("ATELIER_DATA_DIR", dataDir)

	_, err := executeCmd(t, &App{}, "client", "add", "Alice")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dataDir, "clients.json"))
}

func TestRoot_InvalidBackendFlag(t *testing.T) {
	isolateConfig(t)

	_, err := executeCmd(t, &App{}, "--backend", "mongo", "client", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mongo")
}

func TestRoot_WritesUseCaseLog(t *testing.T) {
	isolateConfig(t)
	logPath := filepath.Join(t.TempDir(), "logs", "atelier.log")
	t.Setenv("ATELIER_LOG", logPath)

	app := &App{}
	_, err := executeCmd(t, app, "--backend", "flat", "--flat-driver", "memory", "client", "add", "Alice")
	require.NoError(t, err)
	assert.Nil(t, app.Observer, "log is closed with the store")

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "use_case=add-client")
	assert.Contains(t, string(data), "success=true")
}

func TestRoot_LogOff(t *testing.T) {
	isolateConfig(t)
	home := os.Getenv("HOME")
	t.Setenv("ATELIER_LOG", "off")

	_, err := executeCmd(t, &App{}, "--backend", "flat", "--flat-driver", "memory", "client", "list")
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(home, ".atelier", "atelier.log"))
}
