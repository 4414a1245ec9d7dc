package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"sync"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/openshift-client/pkg/openshift"
)

// fakeApp is the broker side state of an application.
type fakeApp struct {
	name       string
	framework  string
	scalable   bool
	profile    string
	aliases    []string
	cartridges []string
	health     string
}

// fakeFailure replaces the answer of one route.
type fakeFailure struct {
	status  int
	message string
}

// fakeBroker serves the broker REST API from memory and counts the calls
// made to every route.
type fakeBroker struct {
	t      *testing.T
	server *httptest.Server

	mu       sync.Mutex
	hits     map[string]int
	forms    map[string]url.Values
	failures map[string]fakeFailure
	domains  map[string][]*fakeApp
	order    []string
	keys     map[string]openshift.PublicKey
	events   []string
}

func newFakeBroker(t *testing.T) *fakeBroker {
	t.Helper()

	b := &fakeBroker{
		t:        t,
		hits:     map[string]int{},
		forms:    map[string]url.Values{},
		failures: map[string]fakeFailure{},
		domains:  map[string][]*fakeApp{},
		keys:     map[string]openshift.PublicKey{},
	}

	router := mux.NewRouter()
	router.Use(b.middleware)

	root := router.PathPrefix("/broker/rest").Subrouter()
	root.HandleFunc("/api", b.api).Methods(http.MethodGet)
	root.HandleFunc("/user", b.user).Methods(http.MethodGet)
	root.HandleFunc("/user/keys", b.listKeys).Methods(http.MethodGet)
	root.HandleFunc("/user/keys", b.addKey).Methods(http.MethodPost)
	root.HandleFunc("/user/keys/{key}", b.updateKey).Methods(http.MethodPut)
	root.HandleFunc("/user/keys/{key}", b.deleteKey).Methods(http.MethodDelete)
	root.HandleFunc("/domains", b.listDomains).Methods(http.MethodGet)
	root.HandleFunc("/domains", b.addDomain).Methods(http.MethodPost)
	root.HandleFunc("/domains/{domain}", b.getDomain).Methods(http.MethodGet)
	root.HandleFunc("/domains/{domain}", b.renameDomain).Methods(http.MethodPut)
	root.HandleFunc("/domains/{domain}", b.deleteDomain).Methods(http.MethodDelete)
	root.HandleFunc("/domains/{domain}/applications", b.listApps).Methods(http.MethodGet)
	root.HandleFunc("/domains/{domain}/applications", b.addApp).Methods(http.MethodPost)
	root.HandleFunc("/domains/{domain}/applications/{app}", b.getApp).Methods(http.MethodGet)
	root.HandleFunc("/domains/{domain}/applications/{app}", b.deleteApp).Methods(http.MethodDelete)
	root.HandleFunc("/domains/{domain}/applications/{app}/events", b.appEvent).Methods(http.MethodPost)
	root.HandleFunc("/domains/{domain}/applications/{app}/cartridges", b.listCartridges).Methods(http.MethodGet)
	root.HandleFunc("/domains/{domain}/applications/{app}/cartridges", b.addCartridge).Methods(http.MethodPost)
	root.HandleFunc("/domains/{domain}/applications/{app}/cartridges/{cartridge}", b.deleteCartridge).Methods(http.MethodDelete)
	root.HandleFunc("/domains/{domain}/applications/{app}/gears", b.listGears).Methods(http.MethodGet)
	router.HandleFunc("/apps/{domain}/{app}/health", b.health).Methods(http.MethodGet)

	b.server = httptest.NewServer(router)
	t.Cleanup(b.server.Close)

	return b
}

// connect opens a connection to the broker with basic credentials.
func (b *fakeBroker) connect(t *testing.T, mutate ...func(*openshift.Config)) *Connection {
	t.Helper()

	config := &openshift.Config{
		Server:   b.server.URL,
		Username: "alice",
		Password: "s3cret",
	}

	for _, m := range mutate {
		m(config)
	}

	conn, err := New(context.Background(), config)
	require.NoError(t, err)

	return conn
}

func (b *fakeBroker) addDomainState(id string, apps ...*fakeApp) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.domains[id]; !ok {
		b.order = append(b.order, id)
	}

	b.domains[id] = append(b.domains[id], apps...)
}

func (b *fakeBroker) addKeyState(name string, key openshift.PublicKey) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.keys[name] = key
}

// fail makes METHOD path answer with status until cleared.
func (b *fakeBroker) fail(method, path string, status int, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures[method+" "+path] = fakeFailure{status: status, message: message}
}

func (b *fakeBroker) clearFailures() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures = map[string]fakeFailure{}
}

func (b *fakeBroker) hitCount(method, path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.hits[method+" "+path]
}

func (b *fakeBroker) lastForm(method, path string) url.Values {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.forms[method+" "+path]
}

func (b *fakeBroker) receivedEvents() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return append([]string{}, b.events...)
}

func (b *fakeBroker) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path

		body, _ := io.ReadAll(r.Body)
		form, _ := url.ParseQuery(string(body))

		b.mu.Lock()
		b.hits[key]++
		b.forms[key] = form
		failure, failing := b.failures[key]
		b.mu.Unlock()

		if failing {
			b.writeEnvelope(w, failure.status, "", nil, failure.message)

			return
		}

		r.Form = form
		next.ServeHTTP(w, r)
	})
}

func (b *fakeBroker) writeEnvelope(w http.ResponseWriter, status int, kind string, data interface{}, texts ...string) {
	messages := openshift.Messages{}
	for _, text := range texts {
		messages = append(messages, openshift.Message{Severity: "info", Text: text})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"type":     kind,
		"status":   http.StatusText(status),
		"data":     data,
		"messages": messages,
	})
}

func (b *fakeBroker) href(path string) string {
	return b.server.URL + "/broker/rest/" + path
}

func stringParam(name string, options ...string) openshift.LinkParameter {
	return openshift.LinkParameter{Name: name, Type: openshift.ParameterTypeString, ValidOptions: options}
}

func brokerLink(method openshift.HTTPMethod, href string, required []openshift.LinkParameter, optional ...openshift.LinkParameter) openshift.Link {
	return openshift.Link{Method: method, Href: href, RequiredParams: required, OptionalParams: optional}
}

func (b *fakeBroker) api(w http.ResponseWriter, _ *http.Request) {
	b.writeEnvelope(w, http.StatusOK, "links", openshift.Links{
		openshift.RelAPI:         brokerLink(openshift.MethodGet, b.href("api"), nil),
		openshift.RelGetUser:     brokerLink(openshift.MethodGet, "user", nil),
		openshift.RelListDomains: brokerLink(openshift.MethodGet, b.href("domains"), nil),
		openshift.RelAddDomain:   brokerLink(openshift.MethodPost, "/broker/rest/domains", []openshift.LinkParameter{stringParam("id")}),
	})
}

func (b *fakeBroker) userData() map[string]interface{} {
	return map[string]interface{}{
		"login":          "alice",
		"max_gears":      16,
		"consumed_gears": 3,
		"links": openshift.Links{
			openshift.RelGet:      brokerLink(openshift.MethodGet, b.href("user"), nil),
			openshift.RelListKeys: brokerLink(openshift.MethodGet, b.href("user/keys"), nil),
			openshift.RelAddKey: brokerLink(openshift.MethodPost, b.href("user/keys"), []openshift.LinkParameter{
				stringParam("name"), stringParam("type", "ssh-rsa", "ssh-dss", "ssh-ed25519"), stringParam("content"),
			}),
		},
	}
}

func (b *fakeBroker) user(w http.ResponseWriter, _ *http.Request) {
	b.writeEnvelope(w, http.StatusOK, "user", b.userData())
}

func (b *fakeBroker) keyData(name string, key openshift.PublicKey) map[string]interface{} {
	self := b.href("user/keys/" + name)

	return map[string]interface{}{
		"name":    name,
		"type":    key.Type,
		"content": key.Content,
		"links": openshift.Links{
			openshift.RelGet:    brokerLink(openshift.MethodGet, self, nil),
			openshift.RelUpdate: brokerLink(openshift.MethodPut, self, []openshift.LinkParameter{stringParam("type"), stringParam("content")}),
			openshift.RelDelete: brokerLink(openshift.MethodDelete, self, nil),
		},
	}
}

func (b *fakeBroker) listKeys(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	names := make([]string, 0, len(b.keys))
	for name := range b.keys {
		names = append(names, name)
	}
	sort.Strings(names)

	data := make([]interface{}, 0, len(names))
	for _, name := range names {
		data = append(data, b.keyData(name, b.keys[name]))
	}
	b.mu.Unlock()

	b.writeEnvelope(w, http.StatusOK, "keys", data)
}

func (b *fakeBroker) addKey(w http.ResponseWriter, r *http.Request) {
	name := r.Form.Get("name")
	key := openshift.PublicKey{Type: r.Form.Get("type"), Content: r.Form.Get("content")}

	b.mu.Lock()
	_, exists := b.keys[name]
	if !exists {
		b.keys[name] = key
	}
	b.mu.Unlock()

	if exists {
		b.writeEnvelope(w, http.StatusConflict, "", nil, "Key with name "+name+" already exists")

		return
	}

	b.writeEnvelope(w, http.StatusCreated, "key", b.keyData(name, key), "Created SSH key "+name)
}

func (b *fakeBroker) updateKey(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["key"]
	key := openshift.PublicKey{Type: r.Form.Get("type"), Content: r.Form.Get("content")}

	b.mu.Lock()
	b.keys[name] = key
	b.mu.Unlock()

	b.writeEnvelope(w, http.StatusOK, "key", b.keyData(name, key))
}

func (b *fakeBroker) deleteKey(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	delete(b.keys, mux.Vars(r)["key"])
	b.mu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

func (b *fakeBroker) domainData(id string) map[string]interface{} {
	self := b.href("domains/" + id)

	return map[string]interface{}{
		"id":     id,
		"suffix": "rhcloud.com",
		"links": openshift.Links{
			openshift.RelGet:              brokerLink(openshift.MethodGet, self, nil),
			openshift.RelUpdate:           brokerLink(openshift.MethodPut, self, []openshift.LinkParameter{stringParam("id")}),
			openshift.RelDelete:           brokerLink(openshift.MethodDelete, self, nil, openshift.LinkParameter{Name: "force", Type: openshift.ParameterTypeBoolean}),
			openshift.RelListApplications: brokerLink(openshift.MethodGet, self+"/applications", nil),
			openshift.RelAddApplication: brokerLink(openshift.MethodPost, self+"/applications",
				[]openshift.LinkParameter{stringParam("name"), stringParam("cartridge", "jbossas-7", "php-5.3", "jenkins-1.4")},
				openshift.LinkParameter{Name: "scale", Type: openshift.ParameterTypeBoolean},
				stringParam("gear_profile", "small", "medium"),
			),
		},
	}
}

func (b *fakeBroker) listDomains(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	data := make([]interface{}, 0, len(b.order))
	for _, id := range b.order {
		data = append(data, b.domainData(id))
	}
	b.mu.Unlock()

	b.writeEnvelope(w, http.StatusOK, "domains", data)
}

func (b *fakeBroker) addDomain(w http.ResponseWriter, r *http.Request) {
	id := r.Form.Get("id")

	b.mu.Lock()
	_, exists := b.domains[id]
	if !exists {
		b.domains[id] = nil
		b.order = append(b.order, id)
	}
	b.mu.Unlock()

	if exists {
		b.writeEnvelope(w, http.StatusConflict, "", nil, "Namespace '"+id+"' is already in use.")

		return
	}

	b.writeEnvelope(w, http.StatusCreated, "domain", b.domainData(id))
}

func (b *fakeBroker) getDomain(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["domain"]

	b.mu.Lock()
	_, exists := b.domains[id]
	b.mu.Unlock()

	if !exists {
		b.writeEnvelope(w, http.StatusNotFound, "", nil, "Domain "+id+" not found")

		return
	}

	b.writeEnvelope(w, http.StatusOK, "domain", b.domainData(id))
}

func (b *fakeBroker) renameDomain(w http.ResponseWriter, r *http.Request) {
	old := mux.Vars(r)["domain"]
	id := r.Form.Get("id")

	b.mu.Lock()
	b.domains[id] = b.domains[old]
	delete(b.domains, old)

	for i, existing := range b.order {
		if existing == old {
			b.order[i] = id
		}
	}
	b.mu.Unlock()

	b.writeEnvelope(w, http.StatusOK, "domain", b.domainData(id))
}

func (b *fakeBroker) deleteDomain(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["domain"]

	b.mu.Lock()
	delete(b.domains, id)

	kept := b.order[:0]
	for _, existing := range b.order {
		if existing != id {
			kept = append(kept, existing)
		}
	}
	b.order = kept
	b.mu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

func (b *fakeBroker) findApp(domain, name string) *fakeApp {
	for _, app := range b.domains[domain] {
		if app.name == name {
			return app
		}
	}

	return nil
}

func (b *fakeBroker) appData(domain string, app *fakeApp) map[string]interface{} {
	self := b.href("domains/" + domain + "/applications/" + app.name)
	events := self + "/events"
	event := func(options ...string) openshift.Link {
		return brokerLink(openshift.MethodPost, events, []openshift.LinkParameter{stringParam("event", options...)})
	}
	aliasEvent := func(name string) openshift.Link {
		return brokerLink(openshift.MethodPost, events, []openshift.LinkParameter{stringParam("event", name), stringParam("alias")})
	}

	return map[string]interface{}{
		"name":          app.name,
		"uuid":          "uuid-" + app.name,
		"framework":     app.framework,
		"creation_time": "2012-05-14T10:32:04Z",
		"app_url":       b.server.URL + "/apps/" + domain + "/" + app.name + "/",
		"git_url":       "ssh://uuid-" + app.name + "@" + app.name + "-" + domain + ".rhcloud.com/~/git/" + app.name + ".git/",
		"domain_id":     domain,
		"aliases":       append([]string{}, app.aliases...),
		"scalable":      app.scalable,
		"gear_profile":  app.profile,
		"links": openshift.Links{
			openshift.RelGet:            brokerLink(openshift.MethodGet, self, nil),
			openshift.RelDelete:         brokerLink(openshift.MethodDelete, self, nil),
			openshift.RelStart:          event("start"),
			openshift.RelStop:           event("stop"),
			openshift.RelForceStop:      event("force-stop"),
			openshift.RelRestart:        event("restart"),
			openshift.RelScaleUp:        event("scale-up"),
			openshift.RelScaleDown:      event("scale-down"),
			openshift.RelAddAlias:       aliasEvent("add-alias"),
			openshift.RelRemoveAlias:    aliasEvent("remove-alias"),
			openshift.RelListCartridges: brokerLink(openshift.MethodGet, self+"/cartridges", nil),
			openshift.RelAddCartridge:   brokerLink(openshift.MethodPost, self+"/cartridges", []openshift.LinkParameter{stringParam("name")}),
			openshift.RelGetGears:       brokerLink(openshift.MethodGet, self+"/gears", nil),
		},
	}
}

func (b *fakeBroker) listApps(w http.ResponseWriter, r *http.Request) {
	domain := mux.Vars(r)["domain"]

	b.mu.Lock()
	data := make([]interface{}, 0, len(b.domains[domain]))
	for _, app := range b.domains[domain] {
		data = append(data, b.appData(domain, app))
	}
	b.mu.Unlock()

	b.writeEnvelope(w, http.StatusOK, "applications", data)
}

func (b *fakeBroker) addApp(w http.ResponseWriter, r *http.Request) {
	domain := mux.Vars(r)["domain"]
	app := &fakeApp{
		name:      r.Form.Get("name"),
		framework: r.Form.Get("cartridge"),
		scalable:  r.Form.Get("scale") == "true",
		profile:   r.Form.Get("gear_profile"),
		health:    "1",
	}

	if app.profile == "" {
		app.profile = "small"
	}

	b.mu.Lock()
	exists := b.findApp(domain, app.name) != nil
	if !exists {
		b.domains[domain] = append(b.domains[domain], app)
	}
	b.mu.Unlock()

	if exists {
		b.writeEnvelope(w, http.StatusConflict, "", nil, "The supplied application name '"+app.name+"' already exists")

		return
	}

	b.writeEnvelope(w, http.StatusCreated, "application", b.appData(domain, app),
		"Application "+app.name+" was created.", "Git remote: ssh://example")
}

func (b *fakeBroker) getApp(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	b.mu.Lock()
	app := b.findApp(vars["domain"], vars["app"])
	b.mu.Unlock()

	if app == nil {
		b.writeEnvelope(w, http.StatusNotFound, "", nil, "Application "+vars["app"]+" not found")

		return
	}

	b.writeEnvelope(w, http.StatusOK, "application", b.appData(vars["domain"], app))
}

func (b *fakeBroker) deleteApp(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	b.mu.Lock()
	apps := b.domains[vars["domain"]]
	kept := make([]*fakeApp, 0, len(apps))

	for _, app := range apps {
		if app.name != vars["app"] {
			kept = append(kept, app)
		}
	}

	b.domains[vars["domain"]] = kept
	b.mu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

func (b *fakeBroker) appEvent(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	event := r.Form.Get("event")
	alias := r.Form.Get("alias")

	b.mu.Lock()
	b.events = append(b.events, event)
	app := b.findApp(vars["domain"], vars["app"])

	switch event {
	case "add-alias":
		app.aliases = append(app.aliases, alias)
	case "remove-alias":
		kept := make([]string, 0, len(app.aliases))
		for _, existing := range app.aliases {
			if existing != alias {
				kept = append(kept, existing)
			}
		}
		app.aliases = kept
	}

	data := b.appData(vars["domain"], app)
	b.mu.Unlock()

	b.writeEnvelope(w, http.StatusOK, "application", data)
}

func (b *fakeBroker) cartridgeData(domain, app, name, kind string) map[string]interface{} {
	self := b.href("domains/" + domain + "/applications/" + app + "/cartridges/" + name)

	return map[string]interface{}{
		"name": name,
		"type": kind,
		"url":  "mysql://127.0.0.1:3306/",
		"links": openshift.Links{
			openshift.RelGet:    brokerLink(openshift.MethodGet, self, nil),
			openshift.RelDelete: brokerLink(openshift.MethodDelete, self, nil),
		},
	}
}

func (b *fakeBroker) listCartridges(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	b.mu.Lock()
	app := b.findApp(vars["domain"], vars["app"])
	data := []interface{}{b.cartridgeData(vars["domain"], app.name, app.framework, "standalone")}

	for _, name := range app.cartridges {
		data = append(data, b.cartridgeData(vars["domain"], app.name, name, "embedded"))
	}
	b.mu.Unlock()

	b.writeEnvelope(w, http.StatusOK, "cartridges", data)
}

func (b *fakeBroker) addCartridge(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	name := r.Form.Get("name")

	b.mu.Lock()
	app := b.findApp(vars["domain"], vars["app"])
	app.cartridges = append(app.cartridges, name)
	data := b.cartridgeData(vars["domain"], app.name, name, "embedded")
	b.mu.Unlock()

	b.writeEnvelope(w, http.StatusCreated, "cartridge", data, "Added "+name+" to application "+app.name)
}

func (b *fakeBroker) deleteCartridge(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	b.mu.Lock()
	app := b.findApp(vars["domain"], vars["app"])
	kept := make([]string, 0, len(app.cartridges))

	for _, name := range app.cartridges {
		if name != vars["cartridge"] {
			kept = append(kept, name)
		}
	}

	app.cartridges = kept
	b.mu.Unlock()

	b.writeEnvelope(w, http.StatusOK, "", nil, "Removed "+vars["cartridge"])
}

func (b *fakeBroker) listGears(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	b.writeEnvelope(w, http.StatusOK, "gears", []interface{}{
		map[string]interface{}{
			"uuid":         "gear-" + vars["app"],
			"gear_profile": "small",
			"components": []interface{}{
				map[string]interface{}{"name": "jbossas-7", "internal_port": 8080, "proxy_host": nil, "proxy_port": nil},
				map[string]interface{}{"name": "mysql-5.1", "internal_port": "3306", "proxy_host": "10.0.0.1", "proxy_port": "35531"},
			},
		},
	})
}

func (b *fakeBroker) health(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	b.mu.Lock()
	app := b.findApp(vars["domain"], vars["app"])
	body := "0"

	if app != nil {
		body = app.health
	}
	b.mu.Unlock()

	_, _ = io.WriteString(w, body)
}

// setHealth sets the body served by the application's health page.
func (b *fakeBroker) setHealth(domain, name, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if app := b.findApp(domain, name); app != nil {
		app.health = body
	}
}
