package e2e

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/loopforge/api/internal/audio"
	"github.com/loopforge/api/internal/catalog"
	"github.com/loopforge/api/internal/ffmpeg"
	"github.com/loopforge/api/internal/handler"
	"github.com/loopforge/api/internal/jobs"
	"github.com/loopforge/api/internal/model"
	"github.com/loopforge/api/internal/service"
	"github.com/loopforge/api/internal/video"
	"github.com/loopforge/api/internal/worker"
)

// testApp holds all components needed for testing
type testApp struct {
	app      *fiber.App
	mediaDir string
}

// fakeEncoder stands in for ffmpeg: it records the invocation, emits a few
// progress ticks and writes the output file named by the last argument.
type fakeEncoder struct {
	calls [][]string
}

func (f *fakeEncoder) Run(_ context.Context, args []string, _ float64, onProgress ffmpeg.ProgressFunc) error {
	f.calls = append(f.calls, args)
	if onProgress != nil {
		for _, pct := range []int{10, 50, 99} {
			onProgress(pct)
		}
	}
	outPath := args[len(args)-1]
	return os.WriteFile(outPath, []byte("encoded"), 0o644)
}

// fakeProber reports a fixed ten second source clip.
type fakeProber struct{}

func (fakeProber) Probe(context.Context, string) (*ffmpeg.Metadata, error) {
	return &ffmpeg.Metadata{Duration: 10, Width: 1920, Height: 1080, Codec: "h264"}, nil
}

// noopNotifier swallows pub/sub events; e2e tests assert on HTTP only.
type noopNotifier struct{}

func (noopNotifier) NotifyProgress(string, int, model.JobStatus, string) {}
func (noopNotifier) NotifyComplete(string, interface{}) {}
func (noopNotifier) NotifyError(string, string, string) {}

// setupApp creates a Fiber app identical to main.go but in inline mode with
// a fake encoder, so requests run end to end without Redis or ffmpeg.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	root := t.TempDir()
	stemsDir := filepath.Join(root, "stems")
	videosDir := filepath.Join(root, "videos")
	outputDir := filepath.Join(root, "output")
	tempDir := filepath.Join(root, "tmp")
	for _, dir := range []string{stemsDir, videosDir, outputDir, tempDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("failed to create %s: %v", dir, err)
		}
	}

	writeFixture(t, filepath.Join(stemsDir, "rain_loop.m4a"))
	writeFixture(t, filepath.Join(videosDir, "embers.mp4"))

	indexFile := filepath.Join(root, "catalog.json")
	indexJSON := `{
		"stems": [
			{"id": "rain", "name": "Heavy Rain", "file": "rain_loop.m4a", "category": "rain", "baseVolume": 0.8}
		],
		"videos": [
			{"id": "embers", "name": "Glowing Embers", "file": "embers.mp4"}
		]
	}`
	if err := os.WriteFile(indexFile, []byte(indexJSON), 0o644); err != nil {
		t.Fatalf("failed to write catalog index: %v", err)
	}

	cat := catalog.New(stemsDir, videosDir, indexFile)
	encoder := &fakeEncoder{}

	mixEngine := audio.NewMixEngine(cat, encoder, outputDir)
	assemblyEngine := video.NewAssemblyEngine(cat, encoder, fakeProber{}, outputDir, tempDir)

	runner := jobs.NewRunner(jobs.ModeInline, nil, nil, noopNotifier{})
	runner.Register(model.JobKindAudio, worker.AudioProcessor(mixEngine, nil))
	runner.Register(model.JobKindVideo, worker.VideoProcessor(assemblyEngine, nil))

	validate := validator.New()
	mediaService := service.NewMediaService(runner, cat)

	mixHandler := handler.NewMixHandler(mediaService, validate)
	assemblyHandler := handler.NewAssemblyHandler(mediaService, validate)
	jobHandler := handler.NewJobHandler(mediaService)
	catalogHandler := handler.NewCatalogHandler(mediaService)

	app := fiber.New()

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"mode":   string(runner.Mode()),
		})
	})

	api := app.Group("/api")
	api.Post("/mix/generate", mixHandler.Generate)
	api.Post("/video/assemble", assemblyHandler.Assemble)
	api.Get("/jobs/:jobId/result", jobHandler.Result)
	api.Get("/jobs/:kind/:jobId", jobHandler.Status)
	api.Get("/stems", catalogHandler.Stems)
	api.Get("/videos", catalogHandler.Videos)

	return &testApp{app: app, mediaDir: root}
}

func writeFixture(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("fixture"), 0o644); err != nil {
		t.Fatalf("failed to write fixture %s: %v", path, err)
	}
}

// doRequest is a helper to perform HTTP requests against the test app.
func doRequest(app *fiber.App, method, path string, body string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != "" {
		bodyReader = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, path, bodyReader)
	if err != nil {
		return nil, err
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	return app.Test(req, -1)
}

// readBody reads and returns the response body as a string.
func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return string(b)
}

// parseJSON parses response body into a map.
func parseJSON(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	body := readBody(t, resp)
	var result map[string]interface{}
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, body)
	}
	return result
}

// assertStatus checks the HTTP status code.
func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

// errorCode extracts the structured error code from an error response.
func errorCode(t *testing.T, body map[string]interface{}) string {
	t.Helper()
	errObj, ok := body["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected 'error' object in response, got %v", body)
	}
	code, _ := errObj["code"].(string)
	return code
}
