package kundoluk

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gokundoluk/domain/core"
	"gokundoluk/domain/gradebook"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const journalPage = `<html><body>
<ul class="uk-subnav">
  <li><a href="/journal2/subject?id=11">  Математика </a></li>
  <li><a href="https://other.example/subject?id=12">Алгебра</a></li>
  <li><a href="">Пустая ссылка</a></li>
  <li><a href="/journal2/subject?id=13"> </a></li>
</ul>
</body></html>`

const subjectPage = `<html><body>
<table class="elementFixed-striped">
  <thead>
    <tr><th rowspan="2">№</th><th rowspan="2">ФИО</th><th colspan="2">Оценки</th><th rowspan="2">СР</th><th rowspan="2">Четв.</th></tr>
    <tr><th>01.09</th><th>08.09</th></tr>
  </thead>
  <tbody>
    <tr><td>1</td><td>Алиев  Азамат</td><td>5<span class="uk-margin-xsmall-right">!</span></td><td>4</td><td>4,5</td><td>5</td></tr>
    <tr><td>2</td><td>Бекова Айгуль</td><td>н</td><td>3</td><td>3</td><td>3</td></tr>
  </tbody>
</table>
</body></html>`

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	c, err := NewClient(ClientConfig{BaseURL: srv.URL, Session: "s3cr3t", UserAgent: "test-agent"}, nil)
	require.NoError(t, err)
	return c
}

func TestListSubjects(t *testing.T) {
	var gotQuery, gotCookie, gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotCookie = r.Header.Get("Cookie")
		gotAgent = r.Header.Get("User-Agent")
		fmt.Fprint(w, journalPage)
	}))
	defer srv.Close()

	links, err := newTestClient(t, srv).ListSubjects(context.Background(), gradebook.ClassRef{Label: "4Б", ID: 90344}, 2)
	require.NoError(t, err)

	assert.Equal(t, "class=90344&quarter=2", gotQuery)
	assert.Contains(t, gotCookie, "session=s3cr3t")
	assert.Equal(t, "test-agent", gotAgent)

	require.Len(t, links, 2, "links without href or text are skipped")
	assert.Equal(t, gradebook.SubjectLink{Name: "Математика", URL: srv.URL + "/journal2/subject?id=11"}, links[0])
	assert.Equal(t, "https://other.example/subject?id=12", links[1].URL)
}

func TestListSubjects_Failures(t *testing.T) {
	testCases := map[string]http.HandlerFunc{
		"server error": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "down", http.StatusInternalServerError)
		},
		"login page instead of journal": func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `<html><form id="login"></form></html>`)
		},
	}

	for name, handler := range testCases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(handler)
			defer srv.Close()

			_, err := newTestClient(t, srv).ListSubjects(context.Background(), gradebook.ClassRef{Label: "4Б", ID: 1}, 1)
			require.Error(t, err)
			assert.True(t, core.IsDiscoveryError(err))
		})
	}
}

func TestListSubjects_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	c := newTestClient(t, srv)
	srv.Close()

	_, err := c.ListSubjects(context.Background(), gradebook.ClassRef{Label: "4Б", ID: 1}, 1)
	assert.True(t, core.IsDiscoveryError(err))
}

func TestListSubjects_EmptyNav(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<ul class="uk-subnav"></ul>`)
	}))
	defer srv.Close()

	links, err := newTestClient(t, srv).ListSubjects(context.Background(), gradebook.ClassRef{Label: "4Б", ID: 1}, 1)
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestFetchSubject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, subjectPage)
	}))
	defer srv.Close()

	subject, err := newTestClient(t, srv).FetchSubject(context.Background(), gradebook.SubjectLink{Name: "Математика", URL: srv.URL + "/s"})
	require.NoError(t, err)

	assert.Equal(t, "Математика", subject.Name)
	assert.Equal(t, []string{"№", "ФИО", "Оценки / 01.09", "Оценки / 08.09", "СР", "Четв."}, subject.Header)
	require.Len(t, subject.Rows, 2)

	first := subject.Rows[0]
	assert.Equal(t, "Алиев Азамат", first.Student)
	assert.Equal(t, "5", first.Cells[2], "inline badge markup is stripped")
	assert.InDelta(t, 4.5, first.Average.Float64, 1e-9)
	assert.InDelta(t, 5.0, first.Scores[0].Float64, 1e-9)

	assert.False(t, subject.Rows[1].Scores[0].Valid)
}

func TestFetchSubject_Failures(t *testing.T) {
	testCases := map[string]http.HandlerFunc{
		"not found": func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		},
		"no table": func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `<html><p>Нет данных</p></html>`)
		},
		"table too narrow": func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `<table class="elementFixed-striped"><tr><td>1</td><td>X</td></tr></table>`)
		},
	}

	for name, handler := range testCases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(handler)
			defer srv.Close()

			_, err := newTestClient(t, srv).FetchSubject(context.Background(), gradebook.SubjectLink{Name: "Химия", URL: srv.URL})
			require.Error(t, err)
			assert.True(t, core.IsSubjectFetchError(err))
			assert.True(t, strings.Contains(err.Error(), "Химия"))
		})
	}
}

func TestNewClient_RejectsRelativeBase(t *testing.T) {
	_, err := NewClient(ClientConfig{BaseURL: "kundoluk.edu.kg"}, nil)
	assert.Error(t, err)
}
