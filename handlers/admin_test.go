package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func adminPost(t *testing.T, env *webhookEnv, path string, payload map[string]interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	raw, _ := json.Marshal(payload)
	req := httptest.NewRequest("POST", path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := env.app.Test(req, -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	var parsed map[string]interface{}
	_ = json.Unmarshal(body, &parsed)
	return resp, parsed
}

func TestAdminRejectsMissingOrWrongKey(t *testing.T) {
	env := setupWebhookEnv(t)

	resp, _ := adminPost(t, env, "/admin/test/credit", map[string]interface{}{"discordId": "1"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("missing key: expected 401, got %d", resp.StatusCode)
	}

	resp, _ = adminPost(t, env, "/admin/test/credit?key=wrong", map[string]interface{}{"discordId": "1"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("wrong key: expected 401, got %d", resp.StatusCode)
	}
}

func TestAdminCredit(t *testing.T) {
	env := setupWebhookEnv(t)

	resp, body := adminPost(t, env, "/admin/test/credit?key=admin-key", map[string]interface{}{
		"discordId": "300000000000000001",
		"count":     2,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if body["ok"] != true {
		t.Fatalf("unexpected body: %v", body)
	}
	if got := env.userState(t, "300000000000000001").Referrals; got != 2 {
		t.Fatalf("expected 2 referrals, got %d", got)
	}

	// count defaults to 1
	adminPost(t, env, "/admin/test/credit?key=admin-key", map[string]interface{}{
		"discordId": "300000000000000001",
	})
	if got := env.userState(t, "300000000000000001").Referrals; got != 3 {
		t.Fatalf("expected 3 referrals, got %d", got)
	}
	if env.dispatcher.dispatches != 1 {
		t.Fatalf("admin credit crossing threshold should dispatch once, got %d", env.dispatcher.dispatches)
	}

	resp, _ = adminPost(t, env, "/admin/test/credit?key=admin-key", map[string]interface{}{
		"discordId": "300000000000000001",
		"count":     -4,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("negative count: expected 400, got %d", resp.StatusCode)
	}

	resp, _ = adminPost(t, env, "/admin/test/credit?key=admin-key", map[string]interface{}{"count": 1})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing discordId: expected 400, got %d", resp.StatusCode)
	}
}

func TestAdminSet(t *testing.T) {
	env := setupWebhookEnv(t)

	resp, _ := adminPost(t, env, "/admin/test/set?key=admin-key", map[string]interface{}{
		"discordId": "300000000000000002",
		"referrals": 7,
		"rewarded":  1,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	user := env.userState(t, "300000000000000002")
	if user.Referrals != 7 || !user.Rewarded {
		t.Fatalf("unexpected state: %+v", user)
	}

	resp, _ = adminPost(t, env, "/admin/test/set?key=admin-key", map[string]interface{}{
		"discordId": "300000000000000002",
		"rewarded":  5,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid rewarded: expected 400, got %d", resp.StatusCode)
	}
}

func TestAdminDebugUser(t *testing.T) {
	env := setupWebhookEnv(t)

	req := httptest.NewRequest("GET", "/admin/debug/user?key=admin-key&discordId=300000000000000003", nil)
	resp, err := env.app.Test(req, -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}

	raw, _ := io.ReadAll(resp.Body)
	var parsed struct {
		OK   bool `json:"ok"`
		User struct {
			DiscordUserID string `json:"discord_user_id"`
			Referrals     int    `json:"referrals"`
		} `json:"user"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !parsed.OK || parsed.User.DiscordUserID != "300000000000000003" || parsed.User.Referrals != 0 {
		t.Fatalf("unexpected body: %s", raw)
	}
}
