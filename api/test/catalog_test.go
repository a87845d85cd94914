package test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/crumbline/bakeshop/core/dessert"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

type catalogTest struct {
	*TestEnv
}

func TestCatalog(t *testing.T) {
	env, err := NewTestEnv(t, "catalog_test")
	if err != nil {
		t.Fatalf("initializing test env: %v", err)
	}

	ct := &catalogTest{env}

	if err := Login(env, env.AdminEmail, env.AdminPass); err != nil {
		t.Fatal(err)
	}

	d := ct.createDessertOK(t)

	// Admins may deactivate; customers must then stop seeing the row.
	deactivated := ct.updateDessertOK(t, d.ID, map[string]any{"active": false})
	d.Active = false
	if diff := cmp.Diff(d, deactivated, cmpopts.EquateApproxTime(5*time.Second)); diff != "" {
		t.Fatalf("deactivated dessert mismatch (-want +got):\n%s", diff)
	}

	// Staff listing still carries the inactive row.
	if got := ct.listDesserts(t); len(got) != 1 {
		t.Fatalf("staff listing = %d desserts, want 1", len(got))
	}

	if err := Logout(env); err != nil {
		t.Fatal(err)
	}

	// Public listing hides it, and the direct fetch 404s.
	if got := ct.listDesserts(t); len(got) != 0 {
		t.Fatalf("public listing = %d desserts, want 0", len(got))
	}
	w, err := ct.Client().Get(ct.URL + "/desserts/" + d.ID)
	if err != nil {
		t.Fatal(err)
	}
	w.Body.Close()
	if w.StatusCode != http.StatusNotFound {
		t.Fatalf("fetching inactive dessert: status code %s, want 404", w.Status)
	}

	// Mutations are admin-only.
	body, _ := json.Marshal(map[string]any{"name": "Nope", "price": "1.00"})
	w, err = ct.Client().Post(ct.URL+"/desserts", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	w.Body.Close()
	if w.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous create: status code %s, want 401", w.Status)
	}
}

func (ct *catalogTest) createDessertOK(t *testing.T) dessert.Dessert {
	t.Helper()

	nd := map[string]any{
		"name":        "Pistachio Tres Leches",
		"description": "Soaked overnight.",
		"price":       "450.00",
	}
	body, err := json.Marshal(nd)
	if err != nil {
		t.Fatal(err)
	}

	w, err := ct.Client().Post(ct.URL+"/desserts", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Body.Close()

	if w.StatusCode != http.StatusCreated {
		b, _ := io.ReadAll(w.Body)
		t.Fatalf("can't create dessert: status code %s: %s", w.Status, b)
	}

	var d dessert.Dessert
	if err := json.NewDecoder(w.Body).Decode(&d); err != nil {
		t.Fatal(err)
	}
	return d
}

func (ct *catalogTest) updateDessertOK(t *testing.T, id string, up map[string]any) dessert.Dessert {
	t.Helper()

	body, err := json.Marshal(up)
	if err != nil {
		t.Fatal(err)
	}

	r, err := http.NewRequest(http.MethodPut, ct.URL+"/desserts/"+id, bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	r.Header.Set("Content-Type", "application/json")

	w, err := ct.Client().Do(r)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Body.Close()

	if w.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(w.Body)
		t.Fatalf("can't update dessert: status code %s: %s", w.Status, b)
	}

	var d dessert.Dessert
	if err := json.NewDecoder(w.Body).Decode(&d); err != nil {
		t.Fatal(err)
	}
	return d
}

func (ct *catalogTest) listDesserts(t *testing.T) []dessert.Dessert {
	t.Helper()

	w, err := ct.Client().Get(ct.URL + "/desserts")
	if err != nil {
		t.Fatal(err)
	}
	defer w.Body.Close()

	if w.StatusCode != http.StatusOK {
		t.Fatalf("listing desserts: status code %s", w.Status)
	}

	var ds []dessert.Dessert
	if err := json.NewDecoder(w.Body).Decode(&ds); err != nil {
		t.Fatal(err)
	}
	return ds
}
