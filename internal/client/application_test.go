package client

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/openshift-client/pkg/openshift"
)

const samplePath = appsPath + "/sample"

// recordingNotifier keeps every event it receives.
type recordingNotifier struct {
	mu     sync.Mutex
	events []openshift.Event
}

func (n *recordingNotifier) Notify(_ context.Context, event openshift.Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.events = append(n.events, event)

	return nil
}

func (n *recordingNotifier) received() []openshift.Event {
	n.mu.Lock()
	defer n.mu.Unlock()

	return append([]openshift.Event{}, n.events...)
}

func openApplication(t *testing.T, broker *fakeBroker, mutate ...func(*openshift.Config)) (openshift.Domain, openshift.Application) {
	t.Helper()

	conn := broker.connect(t, mutate...)

	domain, err := conn.Domain(context.Background(), "foobar")
	require.NoError(t, err)
	require.NotNil(t, domain)

	app, err := domain.Application(context.Background(), "sample")
	require.NoError(t, err)
	require.NotNil(t, app)

	return domain, app
}

func TestApplication_Fields(t *testing.T) {
	t.Parallel()

	broker := newFakeBroker(t)
	broker.addDomainState("foobar", &fakeApp{name: "sample", framework: "jbossas-7", profile: "medium", aliases: []string{"www.example.com"}})
	_, app := openApplication(t, broker)

	assert.Equal(t, "sample", app.Name())
	assert.Equal(t, "uuid-sample", app.UUID())
	assert.Equal(t, "jbossas-7", app.Cartridge())
	assert.Equal(t, openshift.GearProfileMedium, app.GearProfile())
	assert.Equal(t, openshift.ScaleDisabled, app.Scale())
	assert.Equal(t, broker.server.URL+"/apps/foobar/sample/", app.ApplicationURL())
	assert.Equal(t, broker.server.URL+"/apps/foobar/sample/health", app.HealthCheckURL())
	assert.Contains(t, app.GitURL(), "sample.git")
	assert.Equal(t, []string{"www.example.com"}, app.Aliases())
	assert.True(t, app.HasAlias("www.example.com"))
	assert.False(t, app.HasCreationLog())
	assert.True(t, app.Links().Has(openshift.RelStart))
}

func TestApplication_Events(t *testing.T) {
	t.Parallel()

	broker := newFakeBroker(t)
	broker.addDomainState("foobar", &fakeApp{name: "sample", framework: "php-5.3"})
	_, app := openApplication(t, broker)

	ctx := context.Background()

	require.NoError(t, app.Start(ctx))
	require.NoError(t, app.Stop(ctx, false))
	require.NoError(t, app.Stop(ctx, true))
	require.NoError(t, app.Restart(ctx))
	require.NoError(t, app.ScaleUp(ctx))
	require.NoError(t, app.ScaleDown(ctx))

	assert.Equal(t,
		[]string{"start", "stop", "force-stop", "restart", "scale-up", "scale-down"},
		broker.receivedEvents())
	assert.Equal(t, 6, broker.hitCount(http.MethodPost, samplePath+"/events"))
}

func TestApplication_Aliases(t *testing.T) {
	t.Parallel()

	broker := newFakeBroker(t)
	broker.addDomainState("foobar", &fakeApp{name: "sample", framework: "php-5.3"})
	_, app := openApplication(t, broker)

	ctx := context.Background()

	require.NoError(t, app.AddAlias(ctx, "www.example.com"))
	assert.Equal(t, "www.example.com", broker.lastForm(http.MethodPost, samplePath+"/events").Get("alias"))
	assert.True(t, app.HasAlias("www.example.com"))

	require.NoError(t, app.AddAlias(ctx, "example.com"))
	assert.Equal(t, []string{"www.example.com", "example.com"}, app.Aliases())

	require.NoError(t, app.RemoveAlias(ctx, "www.example.com"))
	assert.Equal(t, []string{"example.com"}, app.Aliases())

	err := app.AddAlias(ctx, "")
	require.ErrorIs(t, err, openshift.ErrNameRequired)
}

func TestApplication_EmbeddedCartridges(t *testing.T) {
	t.Parallel()

	broker := newFakeBroker(t)
	broker.addDomainState("foobar", &fakeApp{name: "sample", framework: "php-5.3", cartridges: []string{"mysql-5.1"}})
	_, app := openApplication(t, broker)

	ctx := context.Background()

	cartridges, err := app.EmbeddedCartridges(ctx)
	require.NoError(t, err)
	require.Len(t, cartridges, 1)
	assert.Equal(t, "mysql-5.1", cartridges[0].Name())
	assert.Equal(t, "embedded", cartridges[0].Type())
	assert.Equal(t, "mysql://127.0.0.1:3306/", cartridges[0].URL())
	assert.Same(t, app, cartridges[0].Application())

	_, err = app.AddEmbeddedCartridge(ctx, "mysql-5.1")
	require.Error(t, err)
	assert.True(t, openshift.IsConflict(err))
	assert.Equal(t, 0, broker.hitCount(http.MethodPost, samplePath+"/cartridges"))

	added, err := app.AddEmbeddedCartridge(ctx, "mongodb-2.0")
	require.NoError(t, err)
	assert.Equal(t, "mongodb-2.0", added.Name())
	assert.Equal(t, "Added mongodb-2.0 to application sample", added.CreationLog())
	assert.Equal(t, "mongodb-2.0", broker.lastForm(http.MethodPost, samplePath+"/cartridges").Get("name"))

	found, err := app.HasEmbeddedCartridge(ctx, "mongodb-2.0")
	require.NoError(t, err)
	assert.True(t, found)

	require.NoError(t, added.Destroy(ctx))
	assert.Equal(t, "mongodb-2.0",
		broker.lastForm(http.MethodDelete, samplePath+"/cartridges/mongodb-2.0").Get("name"))

	cartridges, err = app.EmbeddedCartridges(ctx)
	require.NoError(t, err)
	assert.Len(t, cartridges, 1)
	assert.Equal(t, 1, broker.hitCount(http.MethodGet, samplePath+"/cartridges"))
}

func TestApplication_Gears(t *testing.T) {
	t.Parallel()

	broker := newFakeBroker(t)
	broker.addDomainState("foobar", &fakeApp{name: "sample", framework: "jbossas-7"})
	_, app := openApplication(t, broker)

	gears, err := app.Gears(context.Background())
	require.NoError(t, err)
	require.Len(t, gears, 1)
	assert.Equal(t, "gear-sample", gears[0].UUID)
	assert.Equal(t, openshift.GearProfileSmall, gears[0].Profile)
	require.Len(t, gears[0].Components, 2)
	assert.Equal(t, 8080, gears[0].Components[0].InternalPort.Int())
	assert.Empty(t, gears[0].Components[0].ProxyHost)
	assert.Equal(t, "35531", string(gears[0].Components[1].ProxyPort))
}

func TestApplication_Destroy(t *testing.T) {
	t.Parallel()

	broker := newFakeBroker(t)
	broker.addDomainState("foobar",
		&fakeApp{name: "sample", framework: "php-5.3"},
		&fakeApp{name: "other", framework: "php-5.3"},
	)
	domain, app := openApplication(t, broker)

	broker.fail(http.MethodDelete, samplePath, http.StatusInternalServerError, "Failed to delete")

	err := app.Destroy(context.Background())
	require.Error(t, err)

	apps, err := domain.Applications(context.Background())
	require.NoError(t, err)
	assert.Len(t, apps, 2)

	broker.clearFailures()

	require.NoError(t, app.Destroy(context.Background()))

	apps, err = domain.Applications(context.Background())
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, "other", apps[0].Name())
	assert.Equal(t, 1, broker.hitCount(http.MethodGet, appsPath))
}

func TestApplication_Refresh(t *testing.T) {
	t.Parallel()

	broker := newFakeBroker(t)
	broker.addDomainState("foobar", &fakeApp{name: "sample", framework: "php-5.3"})
	_, app := openApplication(t, broker)

	cartridges, err := app.EmbeddedCartridges(context.Background())
	require.NoError(t, err)
	assert.Empty(t, cartridges)

	broker.mu.Lock()
	broker.findApp("foobar", "sample").cartridges = []string{"mysql-5.1"}
	broker.findApp("foobar", "sample").aliases = []string{"www.example.com"}
	broker.mu.Unlock()

	require.NoError(t, app.Refresh(context.Background()))
	assert.True(t, app.HasAlias("www.example.com"))

	cartridges, err = app.EmbeddedCartridges(context.Background())
	require.NoError(t, err)
	assert.Len(t, cartridges, 1)
}

func TestApplication_LinkNotFound(t *testing.T) {
	t.Parallel()

	broker := newFakeBroker(t)
	broker.addDomainState("foobar", &fakeApp{name: "sample", framework: "php-5.3"})
	conn := broker.connect(t)

	domain, err := conn.Domain(context.Background(), "foobar")
	require.NoError(t, err)

	apps, err := domain.Applications(context.Background())
	require.NoError(t, err)

	app, ok := apps[0].(*Application)
	require.True(t, ok)

	links := app.catalog.current().Clone()
	delete(links, openshift.RelScaleUp)
	app.catalog.replace(links)

	err = app.ScaleUp(context.Background())
	require.Error(t, err)
	assert.True(t, openshift.IsRequestValidation(err))
	assert.ErrorIs(t, err, openshift.ErrLinkNotFound)
	assert.Contains(t, err.Error(), `could not find link "SCALE_UP" in resource "application sample"`)
	assert.Equal(t, 0, broker.hitCount(http.MethodPost, samplePath+"/events"))
}

func TestApplication_WaitForAccessible(t *testing.T) {
	t.Parallel()

	broker := newFakeBroker(t)
	broker.addDomainState("foobar", &fakeApp{name: "sample", framework: "jbossas-7", health: "0"})
	_, app := openApplication(t, broker)

	start := time.Now()
	assert.False(t, app.WaitForAccessible(context.Background(), 300*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 300*time.Millisecond)
	assert.Positive(t, broker.hitCount(http.MethodGet, "/apps/foobar/sample/health"))

	broker.setHealth("foobar", "sample", "1")

	start = time.Now()
	assert.True(t, app.WaitForAccessible(context.Background(), 5*time.Second))
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestApplication_Notifications(t *testing.T) {
	t.Parallel()

	notifier := &recordingNotifier{}
	broker := newFakeBroker(t)
	broker.addDomainState("foobar", &fakeApp{name: "sample", framework: "php-5.3"})
	domain, app := openApplication(t, broker, func(c *openshift.Config) { c.Notifier = notifier })

	ctx := context.Background()

	created, err := domain.CreateApplication(ctx, "fresh", "php-5.3")
	require.NoError(t, err)
	require.NoError(t, app.Restart(ctx))
	require.NoError(t, created.Destroy(ctx))

	events := notifier.received()
	require.Len(t, events, 3)

	assert.Equal(t, openshift.ResourceApplication, events[0].Resource)
	assert.Equal(t, openshift.ActionCreated, events[0].Action)
	assert.Equal(t, "fresh", events[0].Name)
	assert.Equal(t, "foobar", events[0].Parent)
	assert.False(t, events[0].Time.IsZero())

	assert.Equal(t, openshift.ActionUpdated, events[1].Action)
	assert.Equal(t, "restart", events[1].Detail)

	assert.Equal(t, openshift.ActionDestroyed, events[2].Action)
	assert.Equal(t, "fresh", events[2].Name)
}

func TestHealthChecks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		cartridge string
		url       string
		healthy   string
		unhealthy string
	}{
		{cartridge: "jbossas-7", url: "http://app.example.com/health", healthy: "1\n", unhealthy: "0"},
		{cartridge: "jbosseap-6.0", url: "http://app.example.com/health", healthy: "1", unhealthy: "11"},
		{cartridge: "jenkins-1.4", url: "http://app.example.com/login?from=%2F", healthy: "<html><body>login</body></html>", unhealthy: "503"},
		{cartridge: "php-5.3", url: "http://app.example.com/health", healthy: "1", unhealthy: "<html>"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.cartridge, func(t *testing.T) {
			t.Parallel()

			check := healthCheckFor(tt.cartridge)
			assert.Equal(t, tt.url, check.url("http://app.example.com/"))
			assert.True(t, check.isHealthy(tt.healthy))
			assert.False(t, check.isHealthy(tt.unhealthy))
			assert.Empty(t, check.url(""))
		})
	}
}
