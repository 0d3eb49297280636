package portal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/porticus-lab/billrelay/internal/bill"
	"github.com/porticus-lab/billrelay/internal/browser"
	"github.com/porticus-lab/billrelay/internal/extract"
	"github.com/porticus-lab/billrelay/internal/extract/extracttest"
)

func testPortal(dir string) Portal {
	return Portal{
		Name:        "test",
		Item:        bill.GasItem,
		Username:    ID("user"),
		Password:    ID("pass"),
		Submit:      ID("go"),
		LatestBill:  ID("latest"),
		DownloadDir: dir,
		Rename:      PrefixName("Test_"),
		Engine:      extract.Gas(),
	}
}

func fixedNow(t time.Time) func() time.Time { return func() time.Time { return t } }

func TestRecord_Downloaded(t *testing.T) {
	dir := t.TempDir()
	path := extracttest.WriteBill(t, dir, "bill.pdf", "TOTAL AMOUNT DUE $64.20")

	s := NewSession(testPortal(dir))
	s.now = fixedNow(time.Date(2025, 3, 14, 0, 0, 0, 0, time.Local))

	rec := s.record(context.Background(), time.Now().Add(-time.Minute), path, nil)
	assert.Equal(t, "$64.20", rec.Amount)
	assert.Equal(t, filepath.Join(dir, "Test_bill.pdf"), rec.Document)
	assert.Equal(t, "2025-03-14", rec.Period)
}

func TestRecord_FallbackToNewPDF(t *testing.T) {
	dir := t.TempDir()
	start := time.Now().Add(-time.Minute)
	extracttest.WriteBill(t, dir, "late.pdf", "TOTAL AMOUNT DUE $10.00")

	s := NewSession(testPortal(dir))
	rec := s.record(context.Background(), start, "", ErrNoNewWindow)
	assert.Equal(t, "$10.00", rec.Amount)
	assert.Equal(t, "Test_late.pdf", filepath.Base(rec.Document))
}

func TestRecord_NothingDownloaded(t *testing.T) {
	dir := t.TempDir()
	old := extracttest.WriteBill(t, dir, "old.pdf", "TOTAL AMOUNT DUE $99.00")
	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(old, past, past))

	s := NewSession(testPortal(dir))
	s.now = fixedNow(time.Date(2025, 3, 14, 0, 0, 0, 0, time.Local))
	rec := s.record(context.Background(), time.Now().Add(-time.Minute), "", errors.New("timeout"))

	assert.Equal(t, bill.Unavailable, rec.Amount)
	assert.Equal(t, "2025-03-14", rec.Period)
	assert.False(t, rec.HasDocument())
}

func TestRecord_CorruptPDF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.pdf")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o644))

	rec := NewSession(testPortal(dir)).record(context.Background(), time.Now().Add(-time.Minute), path, nil)
	assert.Equal(t, extract.ParseErrorText, rec.Amount)
	assert.True(t, rec.HasDocument())
}

func TestLocator(t *testing.T) {
	assert.Equal(t, `document.getElementById("go").click()`, ID("go").jsClick())
	assert.Equal(t, `document.querySelector("a.btn-action[title*='View Bill']").click()`, CSS(`a.btn-action[title*='View Bill']`).jsClick())
	assert.Contains(t, XPath("/html/body/a").jsClick(), `document.evaluate("/html/body/a"`)
	assert.Equal(t, "xpath=/html/body/a", XPath("/html/body/a").String())
	assert.True(t, Locator{}.IsZero())
}

func TestVendors(t *testing.T) {
	s := Settings{DownloadRoot: "/bills", ProfileDir: "/profile"}

	gas := GasPortal(s)
	assert.Equal(t, filepath.Join("/bills", "Gas_Bills"), gas.DownloadDir)
	assert.True(t, gas.OpensWindow)
	assert.Empty(t, gas.ProfileDir)
	assert.Equal(t, "Gas_Bill_2025-03-14_090000.pdf", gas.Rename("x.pdf", time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)))

	wt := WaterTrashPortal(s)
	assert.Equal(t, filepath.Join("/bills", "Water_and_Trash_Bills"), wt.DownloadDir)
	assert.Equal(t, "/profile", wt.ProfileDir)
	assert.True(t, wt.JSClickFallback)
	assert.True(t, wt.ReuseSession)
	assert.Equal(t, bill.WaterTrashItem, wt.Item)
}

func skipIfNoChrome(t *testing.T) {
	t.Helper()
	if !browser.Available() {
		t.Skip("skipping: Chrome/Chromium not found")
	}
}

const billsPage = `<html><body>
<div style="height:3000px">Bill history</div>
<a id="latest" href="/bill.pdf">View Bill</a>
<a id="latest-window" href="/bill.pdf" target="_blank">Open Bill</a>
</body></html>`

// billServer is a portal with a login form, a bill history page and one
// PDF bill. Signing in sets a persistent session cookie; with the cookie
// the login page shows the bill history directly.
type billServer struct {
	*httptest.Server
	logins atomic.Int32
}

func newBillServer(t *testing.T, pdf []byte) *billServer {
	t.Helper()
	srv := &billServer{}
	loginForm := func(covered bool) string {
		overlay := ""
		if covered {
			overlay = `<div id="cookie-banner" style="position:fixed;top:0;left:0;width:100%;height:100%;z-index:10"></div>`
		}
		return `<html><body><form onsubmit="return false">
<input id="user"><input id="pass" type="password">
<input id="go" type="button" value="Log in" onclick="location.href='/bills?u='+document.getElementById('user').value">
</form>` + overlay + `</body></html>`
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("session"); err == nil && c.Value == "ok" {
			fmt.Fprint(w, billsPage)
			return
		}
		fmt.Fprint(w, loginForm(r.URL.Query().Get("covered") == "1"))
	})
	mux.HandleFunc("/bills", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("u") != "tenant" {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		srv.logins.Add(1)
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "ok", Path: "/", MaxAge: 3600})
		fmt.Fprint(w, billsPage)
	})
	mux.HandleFunc("/bill.pdf", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="statement.pdf"`)
		w.Write(pdf)
	})
	srv.Server = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestSession_Fetch(t *testing.T) {
	skipIfNoChrome(t)

	pdf := extracttest.BuildPDF(extracttest.ContentStream(
		"Date of Service", "From To", "02/10/2025 03/11/2025", "TOTAL AMOUNT DUE $42.00",
	))
	srv := newBillServer(t, pdf)

	p := testPortal(filepath.Join(t.TempDir(), "bills"))
	p.LoginURL = srv.URL + "/login"
	p.Credentials = Credentials{Username: "tenant", Password: "secret"}
	p.DownloadTimeout = 15 * time.Second

	s := NewSession(p, browser.WithNoSandbox())
	rec, err := s.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "$42.00", rec.Amount)
	assert.Equal(t, "02/10/2025 to 03/11/2025", rec.Period)
	assert.True(t, strings.HasPrefix(filepath.Base(rec.Document), "Test_"))
}

func TestSession_FetchNewWindow(t *testing.T) {
	skipIfNoChrome(t)

	pdf := extracttest.BuildPDF(extracttest.ContentStream("TOTAL DUE $17.25"))
	srv := newBillServer(t, pdf)

	p := testPortal(filepath.Join(t.TempDir(), "bills"))
	p.LoginURL = srv.URL + "/login"
	p.Credentials = Credentials{Username: "tenant", Password: "secret"}
	p.LatestBill = ID("latest-window")
	p.OpensWindow = true
	p.DownloadTimeout = 15 * time.Second

	rec, err := NewSession(p, browser.WithNoSandbox()).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "$17.25", rec.Amount)
	assert.True(t, rec.HasDocument())
}

func TestSession_FetchCoveredSubmit(t *testing.T) {
	skipIfNoChrome(t)

	pdf := extracttest.BuildPDF(extracttest.ContentStream("TOTAL DUE $23.40"))
	srv := newBillServer(t, pdf)

	p := testPortal(filepath.Join(t.TempDir(), "bills"))
	p.LoginURL = srv.URL + "/login?covered=1"
	p.Credentials = Credentials{Username: "tenant", Password: "secret"}
	p.JSClickFallback = true
	p.ScrollIntoView = true
	p.LoginTimeout = 15 * time.Second
	p.DownloadTimeout = 15 * time.Second

	s := NewSession(p, browser.WithNoSandbox())
	s.clickWait = 2 * time.Second
	rec, err := s.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), srv.logins.Load(), "login submitted from javascript")
	assert.Equal(t, "$23.40", rec.Amount)
	assert.True(t, rec.HasDocument())
}

func TestSession_FetchCoveredSubmitWithoutFallback(t *testing.T) {
	skipIfNoChrome(t)

	srv := newBillServer(t, extracttest.BuildPDF(extracttest.ContentStream("TOTAL DUE $1.00")))

	p := testPortal(filepath.Join(t.TempDir(), "bills"))
	p.LoginURL = srv.URL + "/login?covered=1"
	p.Credentials = Credentials{Username: "tenant", Password: "secret"}
	p.PageTimeout = 3 * time.Second
	p.DownloadTimeout = 2 * time.Second

	rec, err := NewSession(p, browser.WithNoSandbox()).Fetch(context.Background())
	require.NoError(t, err)
	assert.Zero(t, srv.logins.Load())
	assert.False(t, rec.HasDocument())
}

func TestSession_FetchReusesSession(t *testing.T) {
	skipIfNoChrome(t)

	pdf := extracttest.BuildPDF(extracttest.ContentStream("TOTAL DUE $31.00"))
	srv := newBillServer(t, pdf)

	p := testPortal(filepath.Join(t.TempDir(), "bills"))
	p.LoginURL = srv.URL + "/login"
	p.Credentials = Credentials{Username: "tenant", Password: "secret"}
	p.ReuseSession = true
	p.ProfileDir = t.TempDir()
	p.DownloadTimeout = 15 * time.Second

	first, err := NewSession(p, browser.WithNoSandbox()).Fetch(context.Background())
	require.NoError(t, err)
	require.True(t, first.HasDocument())
	require.Equal(t, int32(1), srv.logins.Load())

	// These credentials would be refused; the saved session must be used.
	p.Credentials = Credentials{Username: "intruder", Password: "wrong"}
	second, err := NewSession(p, browser.WithNoSandbox()).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), srv.logins.Load(), "no second login")
	assert.Equal(t, "$31.00", second.Amount)
	assert.True(t, second.HasDocument())
}

func TestSession_FetchLoginFailure(t *testing.T) {
	skipIfNoChrome(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>maintenance</body></html>`)
	}))
	t.Cleanup(srv.Close)

	p := testPortal(t.TempDir())
	p.LoginURL = srv.URL
	p.LoginTimeout = 2 * time.Second

	rec, err := NewSession(p, browser.WithNoSandbox()).Fetch(context.Background())
	assert.Error(t, err)
	assert.Nil(t, rec)
}
