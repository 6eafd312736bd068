// Command shadow_compare replays read-only requests against the Go service and
// the legacy deployment and reports where their responses diverge.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"go.uber.org/zap"
)

type target struct {
	Method   string `json:"method"`
	Path     string `json:"path"`
	Critical bool   `json:"critical"`
}

type targetFile struct {
	Targets    []target `json:"targets"`
	IgnoreKeys []string `json:"ignoreKeys"`
}

type side struct {
	name  string
	base  string
	token string
}

type outcome struct {
	target      target
	goStatus    int
	oldStatus   int
	goLatency   time.Duration
	oldLatency  time.Duration
	statusMatch bool
	bodyMatch   bool
	err         error
}

func (o outcome) breaking() bool {
	if !o.target.Critical {
		return false
	}
	return o.err != nil || !o.statusMatch || !o.bodyMatch
}

func main() {
	var (
		goBase      = flag.String("go-base", "http://localhost:8080/api/v1", "Go API base URL")
		legacyBase  = flag.String("legacy-base", "http://localhost:3000/api", "legacy API base URL")
		targetsPath = flag.String("targets", filepath.Join("scripts", "shadow_compare", "targets.json"), "JSON targets file")
		email       = flag.String("email", os.Getenv("SHADOW_EMAIL"), "login email used on both sides")
		password    = flag.String("password", os.Getenv("SHADOW_PASSWORD"), "login password used on both sides")
		tolerance   = flag.Float64("tolerance", 0.01, "absolute tolerance for numeric fields")
		timeout     = flag.Duration("timeout", 10*time.Second, "HTTP client timeout")
	)
	flag.Parse()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync() //nolint:errcheck

	file, err := loadTargets(*targetsPath)
	if err != nil {
		logger.Fatal("load targets", zap.Error(err))
	}

	client := &http.Client{Timeout: *timeout}
	goSide := side{name: "go", base: *goBase}
	oldSide := side{name: "legacy", base: *legacyBase}
	if *email != "" {
		for _, s := range []*side{&goSide, &oldSide} {
			if s.token, err = login(client, s.base, *email, *password); err != nil {
				logger.Fatal("login failed", zap.String("side", s.name), zap.Error(err))
			}
		}
	}

	cmp := comparer{ignore: toSet(file.IgnoreKeys), tolerance: *tolerance}
	breaking := 0
	for _, t := range file.Targets {
		res := run(client, cmp, goSide, oldSide, t)
		fields := []zap.Field{
			zap.String("method", t.Method),
			zap.String("path", t.Path),
			zap.Int("go_status", res.goStatus),
			zap.Int("legacy_status", res.oldStatus),
			zap.Duration("go_latency", res.goLatency),
			zap.Duration("legacy_latency", res.oldLatency),
			zap.Bool("critical", t.Critical),
		}
		switch {
		case res.err != nil:
			logger.Error("request failed", append(fields, zap.Error(res.err))...)
		case !res.statusMatch || !res.bodyMatch:
			logger.Warn("responses differ", append(fields, zap.Bool("status_match", res.statusMatch), zap.Bool("body_match", res.bodyMatch))...)
		default:
			logger.Info("match", fields...)
		}
		if res.breaking() {
			breaking++
		}
	}

	if breaking > 0 {
		logger.Error("breaking differences found", zap.Int("count", breaking))
		os.Exit(1)
	}
}

func loadTargets(path string) (*targetFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file targetFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if len(file.Targets) == 0 {
		return nil, fmt.Errorf("no targets defined in %s", path)
	}
	return &file, nil
}

func login(client *http.Client, base, email, password string) (string, error) {
	payload, _ := json.Marshal(map[string]string{"email": email, "password": password})
	resp, err := client.Post(strings.TrimRight(base, "/")+"/auth/login", "application/json", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("login status %d", resp.StatusCode)
	}
	var body map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	if token := findToken(body); token != "" {
		return token, nil
	}
	return "", fmt.Errorf("login response carries no token")
}

// findToken looks for "token" at the top level or inside a "data" envelope.
func findToken(body map[string]interface{}) string {
	if token, ok := body["token"].(string); ok {
		return token
	}
	if data, ok := body["data"].(map[string]interface{}); ok {
		if token, ok := data["token"].(string); ok {
			return token
		}
	}
	return ""
}

func run(client *http.Client, cmp comparer, goSide, oldSide side, t target) outcome {
	res := outcome{target: t}

	goStatus, goBody, goLatency, err := fetch(client, goSide, t)
	if err != nil {
		res.err = fmt.Errorf("go: %w", err)
		return res
	}
	oldStatus, oldBody, oldLatency, err := fetch(client, oldSide, t)
	if err != nil {
		res.err = fmt.Errorf("legacy: %w", err)
		return res
	}

	res.goStatus, res.oldStatus = goStatus, oldStatus
	res.goLatency, res.oldLatency = goLatency, oldLatency
	res.statusMatch = goStatus == oldStatus
	res.bodyMatch = cmp.equal(unwrapEnvelope(goBody), oldBody)
	return res
}

func fetch(client *http.Client, s side, t target) (int, []byte, time.Duration, error) {
	method := strings.ToUpper(strings.TrimSpace(t.Method))
	if method == "" {
		method = http.MethodGet
	}
	path := t.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	req, err := http.NewRequest(method, strings.TrimRight(s.base, "/")+path, nil)
	if err != nil {
		return 0, nil, 0, err
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, 0, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, 0, err
	}
	return resp.StatusCode, body, time.Since(start), nil
}

// unwrapEnvelope strips the {"data": ...} envelope the Go service adds so the
// payload can be compared with the legacy body.
func unwrapEnvelope(body []byte) []byte {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Data) == 0 {
		return body
	}
	return envelope.Data
}

type comparer struct {
	ignore    map[string]struct{}
	tolerance float64
}

func (c comparer) equal(a, b []byte) bool {
	if bytes.Equal(bytes.TrimSpace(a), bytes.TrimSpace(b)) {
		return true
	}
	var av, bv interface{}
	if err := json.Unmarshal(a, &av); err != nil {
		return false
	}
	if err := json.Unmarshal(b, &bv); err != nil {
		return false
	}
	return c.same(av, bv)
}

func (c comparer) same(a, b interface{}) bool {
	switch av := a.(type) {
	case map[string]interface{}:
		bv, ok := b.(map[string]interface{})
		if !ok {
			return false
		}
		for key := range union(av, bv) {
			if _, skip := c.ignore[key]; skip {
				continue
			}
			if !c.same(av[key], bv[key]) {
				return false
			}
		}
		return true
	case []interface{}:
		bv, ok := b.([]interface{})
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !c.same(av[i], bv[i]) {
				return false
			}
		}
		return true
	case float64:
		bv, ok := b.(float64)
		return ok && math.Abs(av-bv) <= c.tolerance
	default:
		return reflect.DeepEqual(a, b)
	}
}

func union(a, b map[string]interface{}) map[string]struct{} {
	keys := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		keys[k] = struct{}{}
	}
	for k := range b {
		keys[k] = struct{}{}
	}
	return keys
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
