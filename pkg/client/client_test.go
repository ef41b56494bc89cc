package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/m-mizutani/goerr/v2"

	"github.com/goliatone/go-ispdn/pkg/client"
	"github.com/goliatone/go-ispdn/pkg/contract"
	"github.com/goliatone/go-ispdn/pkg/model"
)

type recorded struct {
	method string
	path   string
	body   []byte
}

func newBackend(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*httptest.Server, *[]recorded) {
	t.Helper()
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		calls = append(calls, recorded{method: r.Method, path: r.URL.Path, body: body})
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func newClient(t *testing.T, baseURL string, opts ...client.Option) *client.Client {
	t.Helper()
	c, err := client.New(baseURL, opts...)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestEvaluate(t *testing.T) {
	srv, calls := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"level":3,"baseRequirements":["a"],"measures":[{"code":"УПД.1","section":"УПД","description":"d"}],"unknownThreats":false}`)
	})
	spec, err := contract.Load(context.Background())
	if err != nil {
		t.Fatalf("contract: %v", err)
	}
	c := newClient(t, srv.URL+"/api/", client.WithContract(spec))

	res, err := c.Evaluate(context.Background(), model.AnswerSet{DataType: model.DataTypeOther, EmployeesOnly: model.Bool(true)})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	want := model.EvaluationResult{
		Level:            model.Level(3),
		BaseRequirements: []string{"a"},
		Measures:         []model.Measure{{Code: "УПД.1", Section: "УПД", Description: "d"}},
	}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}

	got := (*calls)[0]
	if got.method != http.MethodPost || got.path != "/api/evaluate" {
		t.Fatalf("unexpected request %s %s", got.method, got.path)
	}
	var sent map[string]any
	if err := json.Unmarshal(got.body, &sent); err != nil {
		t.Fatalf("decode request: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"dataType": "other", "threats": []any{}, "employeesOnly": true}, sent); diff != "" {
		t.Fatalf("request body mismatch (-want +got):\n%s", diff)
	}
}

func TestEvaluate_NonSuccessStatus(t *testing.T) {
	srv, _ := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "validation failed", http.StatusUnprocessableEntity)
	})
	c := newClient(t, srv.URL)

	_, err := c.Evaluate(context.Background(), model.AnswerSet{})
	if !errors.Is(err, client.ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
	var ge *goerr.Error
	if !errors.As(err, &ge) {
		t.Fatalf("expected goerr error, got %T", err)
	}
	if status := ge.Values()["status"]; status != http.StatusUnprocessableEntity {
		t.Fatalf("status value missing: %#v", ge.Values())
	}
}

func TestEvaluate_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newClient(t, url).Evaluate(context.Background(), model.AnswerSet{})
	if !errors.Is(err, client.ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
}

func TestEvaluate_ContractRejectsResponse(t *testing.T) {
	srv, _ := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"level":"high"}`)
	})
	spec, _ := contract.Load(context.Background())
	_, err := newClient(t, srv.URL, client.WithContract(spec)).Evaluate(context.Background(), model.AnswerSet{})
	if !errors.Is(err, client.ErrContract) {
		t.Fatalf("expected ErrContract, got %v", err)
	}
}

func TestContractRejectsRequestWithoutCall(t *testing.T) {
	srv, calls := newBackend(t, func(w http.ResponseWriter, r *http.Request) {})
	spec, _ := contract.Load(context.Background())
	c := newClient(t, srv.URL, client.WithContract(spec))

	_, err := c.ExportAct(context.Background(), model.ActExportRequest{FileName: "a.docx"})
	if !errors.Is(err, client.ErrContract) {
		t.Fatalf("expected ErrContract, got %v", err)
	}
	if len(*calls) != 0 {
		t.Fatalf("no request must be issued, got %d", len(*calls))
	}
}

func TestExportAndActTemplate(t *testing.T) {
	const docx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	srv, calls := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", docx)
		_, _ = io.WriteString(w, "PK"+r.URL.Path)
	})
	c := newClient(t, srv.URL)
	ctx := context.Background()

	report, err := c.Export(ctx, model.ExportRequest{FileName: "Отчет ИСПДн.docx"})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if report.Name != "Отчет ИСПДн.docx" || string(report.Body) != "PK/export" || report.ContentType != docx {
		t.Fatalf("unexpected report %+v", report)
	}

	act, err := c.ExportAct(ctx, model.ActExportRequest{
		FileName:   "ИС.docx",
		Payload:    model.AnswerSet{Threats: []model.ThreatType{"2"}},
		UserInputs: model.UserInputs{Organization: "ООО", HeadPosition: "Директор", SystemName: "ИС"},
	})
	if err != nil {
		t.Fatalf("export act: %v", err)
	}
	if string(act.Body) != "PK/export-act" {
		t.Fatalf("unexpected act body %q", act.Body)
	}

	blank, err := c.ActTemplate(ctx)
	if err != nil {
		t.Fatalf("act template: %v", err)
	}
	if string(blank.Body) != "PK/act-self" {
		t.Fatalf("unexpected template body %q", blank.Body)
	}

	last := (*calls)[2]
	if last.method != http.MethodGet || len(last.body) != 0 {
		t.Fatalf("act-self must be a bodiless GET, got %s with %d bytes", last.method, len(last.body))
	}

	var sent map[string]any
	_ = json.Unmarshal((*calls)[0].body, &sent)
	payload, _ := sent["payload"].(map[string]any)
	if _, ok := payload["threats"].([]any); !ok {
		t.Fatalf("threats must be sent as an array: %s", (*calls)[0].body)
	}
}

func TestNew_RejectsRelativeURL(t *testing.T) {
	if _, err := client.New("localhost:8000"); err == nil {
		t.Fatalf("expected error for url without scheme")
	}
}
