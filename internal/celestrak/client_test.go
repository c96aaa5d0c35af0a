package celestrak

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/satrack/satrack/internal/catalog"
)

const satcatPage = `[
  {"OBJECT_NAME": "NOAA 18", "NORAD_CAT_ID": 28654, "OBJECT_TYPE": "PAY", "COUNTRY": "US", "LAUNCH_DATE": "2005-05-20"},
  {"OBJECT_NAME": "NOAA 15", "NORAD_CAT_ID": "25338", "OBJECT_TYPE": "PAY", "OWNER": "US", "LAUNCH_DATE": "1998-05-13"},
  {"NAME": "NOAA DEB", "CATNR": 99001, "OBJECT_TYPE": "DEB"},
  {"OBJECT_NAME": "NO ID RECORD", "OBJECT_TYPE": "PAY"}
]`

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, slog.New(slog.DiscardHandler)), srv
}

func TestSearchParsesAndOrders(t *testing.T) {
	var gotQuery string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("NAME")
		w.Write([]byte(satcatPage))
	})

	entries, err := client.Search(context.Background(), "noaa", 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if gotQuery != "noaa" {
		t.Errorf("NAME query = %q, want %q", gotQuery, "noaa")
	}

	// The no-ID record is dropped; the rest come back NORAD ID ascending.
	wantIDs := []int{25338, 28654, 99001}
	if len(entries) != len(wantIDs) {
		t.Fatalf("got %d entries, want %d", len(entries), len(wantIDs))
	}
	for i, want := range wantIDs {
		if entries[i].NORADID != want {
			t.Errorf("entries[%d].NORADID = %d, want %d", i, entries[i].NORADID, want)
		}
	}

	if entries[0].Country != "US" {
		t.Errorf("OWNER fallback not applied: Country = %q", entries[0].Country)
	}
	if entries[2].Name != "NOAA DEB" || entries[2].ObjectType != catalog.ObjectDebris {
		t.Errorf("legacy NAME/CATNR record parsed as %+v", entries[2])
	}
}

func TestSearchLimit(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(satcatPage))
	})

	entries, err := client.Search(context.Background(), "noaa", 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].NORADID != 25338 || entries[1].NORADID != 28654 {
		t.Errorf("limit kept wrong entries: %d, %d", entries[0].NORADID, entries[1].NORADID)
	}
}

func TestSearchRetriesOnce(t *testing.T) {
	var calls int
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(satcatPage))
	})

	entries, err := client.Search(context.Background(), "noaa", 0)
	if err != nil {
		t.Fatalf("Search after retry: %v", err)
	}
	if calls != 2 {
		t.Errorf("server saw %d calls, want 2", calls)
	}
	if len(entries) != 3 {
		t.Errorf("got %d entries after retry, want 3", len(entries))
	}
}

func TestSearchUnavailable(t *testing.T) {
	var calls int
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.Search(context.Background(), "noaa", 0)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("error = %v, want ErrUnavailable", err)
	}
	if calls != 2 {
		t.Errorf("server saw %d calls, want 2 (one retry)", calls)
	}
}

func TestLookup(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("CATNR") != "28654" {
			t.Errorf("CATNR = %q, want 28654", r.URL.Query().Get("CATNR"))
		}
		w.Write([]byte(`[{"OBJECT_NAME": "NOAA 18", "NORAD_CAT_ID": 28654, "OBJECT_TYPE": "PAY"}]`))
	})

	e, ok, err := client.Lookup(context.Background(), 28654)
	if err != nil || !ok {
		t.Fatalf("Lookup = %v, %v; want hit", ok, err)
	}
	if e.Name != "NOAA 18" {
		t.Errorf("Name = %q", e.Name)
	}
}

func TestLookupMiss(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	_, ok, err := client.Lookup(context.Background(), 12345)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if ok {
		t.Error("empty catalog page reported as a hit")
	}
}

func TestFetchTLEThreeLine(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("CATNR") != "25544" {
			t.Errorf("CATNR = %q, want 25544", r.URL.Query().Get("CATNR"))
		}
		w.Write([]byte("ISS (ZARYA)\r\n1 25544U ...\r\n2 25544 ...\r\n"))
	})

	l1, l2, err := client.FetchTLE(context.Background(), 25544)
	if err != nil {
		t.Fatalf("FetchTLE: %v", err)
	}
	if l1 != "1 25544U ..." || l2 != "2 25544 ..." {
		t.Errorf("lines = %q, %q", l1, l2)
	}
}

func TestFetchTLETwoLine(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("1 25544U ...\n2 25544 ...\n"))
	})

	l1, l2, err := client.FetchTLE(context.Background(), 25544)
	if err != nil {
		t.Fatalf("FetchTLE: %v", err)
	}
	if l1 != "1 25544U ..." || l2 != "2 25544 ..." {
		t.Errorf("lines = %q, %q", l1, l2)
	}
}

func TestFetchTLENoElements(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"celestrak marker", "No GP data found"},
		{"empty body", ""},
		{"single line", "1 25544U ..."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tc.body))
			})

			_, _, err := client.FetchTLE(context.Background(), 40000)
			if !errors.Is(err, ErrNoElements) {
				t.Errorf("error = %v, want ErrNoElements", err)
			}
		})
	}
}

func TestGetTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := NewClient(srv.URL, slog.New(slog.DiscardHandler))
	srv.Close()

	_, _, err := client.FetchTLE(context.Background(), 25544)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("error = %v, want ErrUnavailable", err)
	}
}

func TestParseSatcatEmpty(t *testing.T) {
	entries, err := parseSatcat([]byte("  \n"))
	if err != nil {
		t.Fatalf("parseSatcat: %v", err)
	}
	if entries != nil {
		t.Errorf("got %v, want nil", entries)
	}
}
