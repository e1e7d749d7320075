package backend_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"connectrpc.com/connect"

	"codecompass/internal/backend"
	"codecompass/internal/backend/backendtest"
)

func TestProjectClientGetFileInfo(t *testing.T) {
	srv := backendtest.New()
	defer srv.Close()

	var gotReq backend.FileIDRequest
	srv.Handle("/ws1/ProjectService/getFileInfo", func(raw json.RawMessage) (any, error) {
		if err := json.Unmarshal(raw, &gotReq); err != nil {
			return nil, err
		}
		return backend.FileInfo{ID: gotReq.FileID, Name: "main.cpp", Type: "CPP", Path: "/src/main.cpp"}, nil
	})

	client := backend.NewProjectClient(backend.Transport{URL: srv.URL + "/ws1/ProjectService", Service: backend.ProjectService})
	info, err := client.GetFileInfo(context.Background(), " 42 ")
	if err != nil {
		t.Fatalf("GetFileInfo() error = %v", err)
	}
	if gotReq.FileID != "42" {
		t.Fatalf("request fileId = %q, want 42", gotReq.FileID)
	}
	if info.Name != "main.cpp" || info.Type != "CPP" {
		t.Fatalf("unexpected info: %+v", info)
	}
}

func TestProjectClientRejectsEmptyFileID(t *testing.T) {
	client := backend.NewProjectClient(backend.Transport{URL: "http://127.0.0.1:0/ws1/ProjectService"})
	if _, err := client.GetFileInfo(context.Background(), "  "); err == nil {
		t.Fatalf("expected error for empty file id")
	}
}

func TestLanguageClientErrorCarriesProcedure(t *testing.T) {
	srv := backendtest.New()
	defer srv.Close()
	srv.Handle("/ws1/CppService/getDiagram", func(json.RawMessage) (any, error) {
		return nil, errors.New("no such node")
	})

	client := backend.NewLanguageClient(backend.Transport{URL: srv.URL + "/ws1/CppService", Service: "CppService"})
	_, err := client.GetDiagram(context.Background(), "n1", "call")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "CppService.getDiagram") {
		t.Fatalf("error %q does not name the procedure", err)
	}
	if connect.CodeOf(err) != connect.CodeInternal {
		t.Fatalf("code = %v, want internal", connect.CodeOf(err))
	}
}

func TestLanguageClientFileTypes(t *testing.T) {
	srv := backendtest.New()
	defer srv.Close()
	srv.Reply("/ws1/CppService/getFileTypes", []string{"CPP", "C"})

	client := backend.NewLanguageClient(backend.Transport{URL: srv.URL + "/ws1/CppService", Service: "CppService"})
	types, err := client.FileTypes(context.Background())
	if err != nil {
		t.Fatalf("FileTypes() error = %v", err)
	}
	if len(types) != 2 || types[0] != "CPP" {
		t.Fatalf("unexpected types: %v", types)
	}
}

func TestLanguageServiceName(t *testing.T) {
	cases := map[string]string{"cpp": "CppService", "python": "PythonService", " ": ""}
	for in, want := range cases {
		if got := backend.LanguageServiceName(in); got != want {
			t.Fatalf("LanguageServiceName(%q) = %q, want %q", in, got, want)
		}
	}
}
