package contract_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-ispdn/pkg/contract"
)

func loadContract(t *testing.T) *contract.Contract {
	t.Helper()
	c, err := contract.Load(context.Background())
	if err != nil {
		t.Fatalf("load contract: %v", err)
	}
	return c
}

func TestLoad_Endpoints(t *testing.T) {
	c := loadContract(t)
	if diff := cmp.Diff([]string{"actSelf", "evaluate", "export", "exportAct"}, c.Operations()); diff != "" {
		t.Fatalf("operations mismatch (-want +got):\n%s", diff)
	}

	cases := map[string][2]string{
		contract.OpEvaluate:  {http.MethodPost, "/evaluate"},
		contract.OpExport:    {http.MethodPost, "/export"},
		contract.OpExportAct: {http.MethodPost, "/export-act"},
		contract.OpActSelf:   {http.MethodGet, "/act-self"},
	}
	for id, want := range cases {
		ep, err := c.Endpoint(id)
		if err != nil {
			t.Fatalf("endpoint %s: %v", id, err)
		}
		if ep.Method != want[0] || ep.Path != want[1] {
			t.Fatalf("%s resolved to %s %s", id, ep.Method, ep.Path)
		}
	}

	if _, err := c.Endpoint("delete"); !errors.Is(err, contract.ErrUnknownOperation) {
		t.Fatalf("expected ErrUnknownOperation, got %v", err)
	}
}

func TestValidateRequest(t *testing.T) {
	c := loadContract(t)
	cases := []struct {
		name string
		op   string
		body string
		ok   bool
	}{
		{name: "evaluate full", op: contract.OpEvaluate, body: `{"dataType":"public","threats":["1","3"],"employeesOnly":false,"nonEmployeeScope":"under_100k"}`, ok: true},
		{name: "evaluate empty threats", op: contract.OpEvaluate, body: `{"threats":[]}`, ok: true},
		{name: "evaluate missing threats", op: contract.OpEvaluate, body: `{"dataType":"public"}`},
		{name: "evaluate threats as string", op: contract.OpEvaluate, body: `{"threats":"1"}`},
		{name: "evaluate bad data type", op: contract.OpEvaluate, body: `{"dataType":"secret","threats":[]}`},
		{name: "export", op: contract.OpExport, body: `{"fileName":"Отчет ИСПДн.docx","payload":{"threats":["unknown"]}}`, ok: true},
		{name: "export without payload", op: contract.OpExport, body: `{"fileName":"a.docx"}`},
		{name: "act", op: contract.OpExportAct, body: `{"fileName":"ИС.docx","payload":{"threats":["2"]},"userInputs":{"organization":"ООО","headPosition":"Директор","systemName":"ИС"}}`, ok: true},
		{name: "act blank field", op: contract.OpExportAct, body: `{"fileName":"ИС.docx","payload":{"threats":["2"]},"userInputs":{"organization":"","headPosition":"Директор","systemName":"ИС"}}`},
		{name: "not json", op: contract.OpEvaluate, body: `{`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := c.ValidateRequest(tc.op, []byte(tc.body))
			if tc.ok && err != nil {
				t.Fatalf("expected valid body, got %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}

	if err := c.ValidateRequest(contract.OpActSelf, nil); err != nil {
		t.Fatalf("act-self takes no body: %v", err)
	}
	if err := c.ValidateRequest(contract.OpActSelf, []byte(`{}`)); err == nil {
		t.Fatalf("expected error for unexpected body")
	}
}

func TestValidateResponse(t *testing.T) {
	c := loadContract(t)
	good := `{"level":2,"baseRequirements":["a"],"measures":[{"code":"ИАФ.1","section":"ИАФ","description":"d"}],"unknownThreats":false}`
	if err := c.ValidateResponse(contract.OpEvaluate, http.StatusOK, []byte(good)); err != nil {
		t.Fatalf("expected valid response: %v", err)
	}
	undetermined := `{"level":null,"baseRequirements":[],"measures":[],"possibleLevels":[{"threatType":"1","level":1}],"unknownThreats":true}`
	if err := c.ValidateResponse(contract.OpEvaluate, http.StatusOK, []byte(undetermined)); err != nil {
		t.Fatalf("expected nullable level: %v", err)
	}
	bad := `{"level":"high","measures":[{"code":1}]}`
	err := c.ValidateResponse(contract.OpEvaluate, http.StatusOK, []byte(bad))
	if err == nil || !strings.Contains(err.Error(), "evaluate response") {
		t.Fatalf("expected response validation error, got %v", err)
	}
	if err := c.ValidateResponse(contract.OpExport, http.StatusOK, []byte("PK\x03\x04")); err != nil {
		t.Fatalf("binary responses are not checked: %v", err)
	}
	if got := c.ResponseContentType(contract.OpActSelf); !strings.Contains(got, "wordprocessingml") {
		t.Fatalf("unexpected act content type %q", got)
	}
}

func TestParse_Errors(t *testing.T) {
	if _, err := contract.Parse(context.Background(), nil); err == nil {
		t.Fatalf("expected error for empty document")
	}
	if _, err := contract.Parse(context.Background(), []byte("openapi: 3.0.3\ninfo: {title: x, version: '1'}\npaths: {}\n")); err == nil {
		t.Fatalf("expected error for document without paths")
	}
}
