package service_test

import (
	"testing"

	"github.com/dshills/orchestrate/service"
)

func TestContextParamAccessors(t *testing.T) {
	ctx := &service.Context{
		Event: "app.url",
		Params: map[string]any{
			"url":   "demo://x",
			"count": 3,
			"ok":    true,
		},
	}

	if got := ctx.ParamString("url"); got != "demo://x" {
		t.Errorf("ParamString: got %q", got)
	}
	if got := ctx.ParamInt("count"); got != 3 {
		t.Errorf("ParamInt: got %d", got)
	}
	if !ctx.ParamBool("ok") {
		t.Error("ParamBool: expected true")
	}
	if _, ok := ctx.Param("missing"); ok {
		t.Error("expected missing param to report absent")
	}
	if got := ctx.ParamString("missing"); got != "" {
		t.Errorf("missing param should be zero, got %q", got)
	}
}

func TestContextArgAccessors(t *testing.T) {
	ctx := &service.Context{
		Args: map[string]any{"lang": "en", "retries": int64(5)},
	}

	if got := ctx.ArgString("lang"); got != "en" {
		t.Errorf("ArgString: got %q", got)
	}
	if got := ctx.ArgInt("retries"); got != 5 {
		t.Errorf("ArgInt: got %d", got)
	}
}

func TestBag(t *testing.T) {
	bag := service.NewBag()

	bag.Set("user", "mira")
	bag.Set("attempts", 2)
	bag.Set("admin", false)

	if got := bag.GetString("user"); got != "mira" {
		t.Errorf("GetString: got %q", got)
	}
	if got := bag.GetInt("attempts"); got != 2 {
		t.Errorf("GetInt: got %d", got)
	}
	if bag.GetBool("admin") {
		t.Error("GetBool: expected false")
	}
	if !bag.Has("user") {
		t.Error("expected Has(user)")
	}
	if bag.Len() != 3 {
		t.Errorf("expected 3 keys, got %d", bag.Len())
	}

	bag.Delete("user")
	if bag.Has("user") {
		t.Error("expected user deleted")
	}
	if _, ok := bag.Get("user"); ok {
		t.Error("Get after delete should report absent")
	}
}
