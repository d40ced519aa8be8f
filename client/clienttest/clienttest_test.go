package clienttest

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/broady/shapegen/client"
)

type pet struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

type problem struct {
	Message string `json:"message"`
}

type auth struct {
	Authorization string `json:"authorization"`
}

func TestTransport_Success(t *testing.T) {
	tr := New()
	tr.On("/pets.get").JSON(pet{ID: 7, Name: "Rex"}).Header("X-Request-Id", "abc")

	res := client.Call[pet, problem](context.Background(), tr, "/pets.get", pet{ID: 7}, auth{Authorization: "Bearer t"})
	got, err := res.Unwrap()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != (pet{ID: 7, Name: "Rex"}) {
		t.Errorf("got %+v", got)
	}
	if id := res.Metadata().Headers.Get("X-Request-Id"); id != "abc" {
		t.Errorf("X-Request-Id = %q", id)
	}

	req := tr.Last(t, "/pets.get")
	AssertJSONBody(t, req, map[string]any{"id": 7, "name": ""})
	AssertHeader(t, req, "Authorization", "Bearer t")

	var decoded pet
	DecodeJSON(t, req, &decoded)
	if decoded.ID != 7 {
		t.Errorf("decoded ID = %d", decoded.ID)
	}
}

func TestTransport_ApplicationError(t *testing.T) {
	tr := New()
	tr.On("/pets.create").Status(http.StatusConflict).JSON(problem{Message: "name taken"})

	res := client.Call[pet, problem](context.Background(), tr, "/pets.create", pet{}, nil)
	app, ok := res.UnwrapErr()
	if !ok {
		t.Fatalf("expected application error, got %v", res.Err())
	}
	if app.Message != "name taken" {
		t.Errorf("message = %q", app.Message)
	}
	if res.Status() != http.StatusConflict {
		t.Errorf("status = %d", res.Status())
	}
}

func TestTransport_UnknownPath(t *testing.T) {
	tr := New()
	res := client.Call[pet, problem](context.Background(), tr, "/pets.missing", nil, nil)
	if res.IsOk() {
		t.Fatal("expected failure")
	}
	if res.Err().Transport() == nil {
		t.Errorf("expected transport error, got %v", res.Err())
	}
	if res.Err().Status() != http.StatusNotFound {
		t.Errorf("status = %d", res.Err().Status())
	}
	if n := len(tr.Requests()); n != 1 {
		t.Errorf("recorded %d requests", n)
	}
}

func TestTransport_Fail(t *testing.T) {
	boom := errors.New("connection refused")
	tr := New()
	tr.On("/pets.get").Fail(boom)

	res := client.Call[pet, problem](context.Background(), tr, "/pets.get", nil, nil)
	if res.IsOk() {
		t.Fatal("expected failure")
	}
	if !errors.Is(res.Err(), boom) {
		t.Errorf("expected %v, got %v", boom, res.Err())
	}
	if res.Err().Status() != 0 {
		t.Errorf("status = %d", res.Err().Status())
	}
}

func TestTransport_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	tr := New()
	tr.On("/pets.get").JSON(pet{})

	res := client.Call[pet, problem](ctx, tr, "/pets.get", nil, nil)
	if !errors.Is(res.Err(), context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", res.Err())
	}
	if n := len(tr.Requests()); n != 0 {
		t.Errorf("recorded %d requests", n)
	}
}

func TestTransport_Concurrent(t *testing.T) {
	tr := New()
	tr.On("/pets.get").JSON(pet{ID: 1})

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := client.Call[pet, problem](context.Background(), tr, "/pets.get", nil, nil)
			if !res.IsOk() {
				t.Errorf("unexpected error: %v", res.Err())
			}
		}()
	}
	wg.Wait()
	if n := len(tr.Requests()); n != 20 {
		t.Errorf("recorded %d requests, want 20", n)
	}
}

func TestReply_Defaults(t *testing.T) {
	tr := New()
	tr.On("/ping")
	res := client.Call[*pet, problem](context.Background(), tr, "/ping", nil, nil)
	got, err := res.Unwrap()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil output for a null body, got %+v", got)
	}
}
