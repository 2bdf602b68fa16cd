package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFaviconService() *FaviconService {
	svc := NewFaviconService(2 * time.Second)
	svc.allowPrivate = true
	return svc
}

func TestFaviconLookup_DeclaredIcon(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head>
			<title>  Example Site </title>
			<link rel="shortcut icon" href="/static/fav.png">
		</head><body></body></html>`)
	}))
	defer server.Close()

	info, err := newTestFaviconService().Lookup(context.Background(), server.URL+"/page")
	require.NoError(t, err)
	assert.Equal(t, server.URL+"/static/fav.png", info.Favicon)
	assert.Equal(t, "Example Site", info.Title)
}

func TestFaviconLookup_Fallbacks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/touch":
			fmt.Fprint(w, `<html><head><link rel="apple-touch-icon" href="https://cdn.example.com/touch.png"></head></html>`)
		default:
			fmt.Fprint(w, `<html><head><meta property="og:title" content="OG Title"></head></html>`)
		}
	}))
	defer server.Close()

	svc := newTestFaviconService()

	info, err := svc.Lookup(context.Background(), server.URL+"/touch")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/touch.png", info.Favicon)

	info, err = svc.Lookup(context.Background(), server.URL+"/plain")
	require.NoError(t, err)
	assert.Equal(t, server.URL+"/favicon.ico", info.Favicon)
	assert.Equal(t, "OG Title", info.Title)
}

func TestFaviconLookup_Errors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	_, err := newTestFaviconService().Lookup(context.Background(), server.URL)
	assert.Equal(t, ErrSiteUnreachable, err)

	_, err = newTestFaviconService().Lookup(context.Background(), "ftp://example.com")
	assert.Equal(t, ErrInvalidSiteURL, err)

	_, err = newTestFaviconService().Lookup(context.Background(), "/relative")
	assert.Equal(t, ErrInvalidSiteURL, err)
}

func TestFaviconLookup_BlocksPrivateHosts(t *testing.T) {
	svc := NewFaviconService(time.Second)

	for _, target := range []string{
		"http://127.0.0.1/",
		"http://10.0.0.8/",
		"http://192.168.1.1/admin",
		"http://[::1]/",
		"http://169.254.169.254/latest/meta-data",
	} {
		_, err := svc.Lookup(context.Background(), target)
		assert.Equal(t, ErrBlockedSiteHost, err, target)
	}
}

func TestFaviconLookup_StopsReadingLargePages(t *testing.T) {
	var written atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><title>Big</title><link rel="icon" href="/big.png"></head><body>`)
		chunk := []byte(strings.Repeat("<p>filler</p>", 4096))
		for written.Load() < 200<<20 {
			n, err := w.Write(chunk)
			written.Add(int64(n))
			if err != nil {
				return
			}
		}
	}))
	defer server.Close()

	info, err := newTestFaviconService().Lookup(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, server.URL+"/big.png", info.Favicon)
	assert.Equal(t, "Big", info.Title)
	assert.Less(t, written.Load(), int64(50<<20))
}
