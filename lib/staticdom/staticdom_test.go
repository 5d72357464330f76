package staticdom

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"uiharvest/lib/harvest"
	"uiharvest/lib/telemetry"

	"github.com/stretchr/testify/require"
)

const indexPage = `<!DOCTYPE html>
<html>
<body>
	<a id="catalog-link" href="/catalog">Catalog</a>
	<div class="hidden-panel" style="display: none">secret</div>
</body>
</html>`

const catalogPage = `<!DOCTYPE html>
<html>
<body>
	<section class="listing">
		<div class="entry">
			<h3>Alpha</h3>
			<dl><dt>name</dt><dd>Alpha</dd><dt>Kind</dt><dd>Widget</dd></dl>
		</div>
		<div class="entry">
			<h3>Beta</h3>
			<dl><dt>name</dt><dd>Beta</dd><dt>Kind</dt><dd>Gadget</dd></dl>
		</div>
		<div class="entry">
			<h3>Alpha</h3>
			<dl><dt>name</dt><dd>Alpha</dd><dt>Kind</dt><dd>Duplicate</dd></dl>
		</div>
	</section>
</body>
</html>`

func testServer(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(indexPage))
	})
	mux.HandleFunc("/catalog", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(catalogPage))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestClient(t *testing.T, baseUrl string) *Client {
	client, err := NewClient(Options{BaseUrl: baseUrl})
	require.NoError(t, err)
	return client
}

func TestNavigateAndInspect(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:staticdom")
	defer cleanup()

	server := testServer(t)
	client := newTestClient(t, server.URL)
	ctx := context.Background()

	require.NoError(t, client.Navigate(ctx, server.URL))

	visible, err := client.IsVisible(ctx, "#catalog-link")
	require.NoError(t, err)
	require.True(t, visible)

	visible, err = client.IsVisible(ctx, ".hidden-panel")
	require.NoError(t, err)
	require.False(t, visible)

	err = client.WaitVisible(ctx, ".hidden-panel", 0)
	require.Equal(t, harvest.KindAffordanceTimeout, harvest.KindOf(err))
}

func TestClickFollowsLink(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:staticdom")
	defer cleanup()

	server := testServer(t)
	client := newTestClient(t, server.URL)
	ctx := context.Background()

	require.NoError(t, client.Navigate(ctx, server.URL))
	require.NoError(t, client.Click(ctx, "#catalog-link"))

	count, err := client.Count(ctx, ".entry")
	require.NoError(t, err)
	require.Equal(t, 3, count)

	text, err := client.TextNth(ctx, ".entry h3", 1)
	require.NoError(t, err)
	require.Equal(t, "Beta", text)
}

func TestClickRefusesNonLink(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:staticdom")
	defer cleanup()

	server := testServer(t)
	client := newTestClient(t, server.URL)
	ctx := context.Background()

	require.NoError(t, client.Navigate(ctx, server.URL))
	require.Error(t, client.Click(ctx, ".hidden-panel"))
}

func TestMarkRegion(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:staticdom")
	defer cleanup()

	server := testServer(t)
	client := newTestClient(t, server.URL)
	ctx := context.Background()

	require.NoError(t, client.Navigate(ctx, server.URL+"/catalog"))

	region, err := client.MarkRegion(ctx, ".entry h3", 2)
	require.NoError(t, err)

	count, err := client.Count(ctx, region+" .entry")
	require.NoError(t, err)
	require.Equal(t, 3, count)

	region, err = client.MarkRegion(ctx, ".entry h3", -1)
	require.NoError(t, err)
	require.Equal(t, harvest.DocumentRootSelector, region)

	count, err = client.Count(ctx, "["+regionAttr+"]")
	require.NoError(t, err)
	require.Equal(t, 0, count)
}

func TestFlatHarvestOverStaticTarget(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:staticdom")
	defer cleanup()

	server := testServer(t)
	client := newTestClient(t, server.URL)

	outPath := t.TempDir() + "/catalog.csv"
	cfg := harvest.Config{
		BaseUrl:           server.URL + "/catalog",
		Output:            outPath,
		SurfaceSelector:   ".listing",
		CandidateSelector: ".entry",
		PrimaryField:      "name",
		PreferredFields:   []string{"name", "Kind"},
	}

	result, err := harvest.Execute(context.Background(), client, cfg, harvest.ModeFlat, nil)
	require.NoError(t, err)
	require.Equal(t, harvest.StatusCompleted, result.Status)
	require.Equal(t, []string{"name", "Kind"}, result.Schema)

	require.Len(t, result.Records, 2)
	require.Equal(t, "Alpha", result.Records[0].Field("name"))
	require.Equal(t, "Widget", result.Records[0].Field("Kind"))
	require.Equal(t, "Beta", result.Records[1].Field("name"))
	require.Equal(t, "Gadget", result.Records[1].Field("Kind"))
}
