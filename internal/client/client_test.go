package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
)

func TestCreateOrderJSON(t *testing.T) {
	var got CreateOrderRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/orders/create" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %s, want application/json", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatal(err)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "trackingNumber": "ABCD2345"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	tn, err := c.CreateOrder(context.Background(), CreateOrderRequest{
		CustomerName:  "Aisha",
		Email:         "aisha@example.com",
		PhoneNumber:   "0123456789",
		PaymentMethod: "payLater",
		Items: []CreateOrderItemRequest{
			{Name: "Hummus", NameAr: "حمص", Price: decimal.NewFromInt(5), Quantity: 1},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if tn != "ABCD2345" {
		t.Errorf("tracking number = %q", tn)
	}
	if got.CustomerName != "Aisha" || len(got.Items) != 1 {
		t.Errorf("server saw %+v", got)
	}
}

func TestCreateOrderMultipartWhenReceiptAttached(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(4 << 20); err != nil {
			t.Fatalf("expected multipart body: %v", err)
		}
		if r.FormValue("paymentMethod") != "duitnow" {
			t.Errorf("paymentMethod = %q", r.FormValue("paymentMethod"))
		}
		var items []CreateOrderItemRequest
		if err := json.Unmarshal([]byte(r.FormValue("items")), &items); err != nil {
			t.Errorf("items field not valid JSON: %v", err)
		}
		file, header, err := r.FormFile("receipt")
		if err != nil {
			t.Fatalf("missing receipt part: %v", err)
		}
		defer file.Close()
		if header.Filename != "proof.png" {
			t.Errorf("receipt filename = %q", header.Filename)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "trackingNumber": "WXYZ7890"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	tn, err := c.CreateOrder(context.Background(), CreateOrderRequest{
		CustomerName:  "Omar",
		Email:         "omar@example.com",
		PhoneNumber:   "0129876543",
		PaymentMethod: "duitnow",
		Items: []CreateOrderItemRequest{
			{Name: "Chicken Shawarma", Price: decimal.NewFromInt(10), Quantity: 2},
		},
		Receipt: &Attachment{Filename: "proof.png", Data: []byte("png-bytes")},
	})
	if err != nil {
		t.Fatal(err)
	}
	if tn != "WXYZ7890" {
		t.Errorf("tracking number = %q", tn)
	}
}

func TestTrackOrderNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": "order not found"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.TrackOrder(context.Background(), "NOPE0000")
	if !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("got %v, want ErrOrderNotFound", err)
	}
}

func TestBearerTokenAttached(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-123" {
			t.Errorf("Authorization = %q", got)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"orders": []Order{}})
	}))
	defer srv.Close()

	c := New(srv.URL)
	c.SetToken("tok-123")
	if _, err := c.ListOrders(context.Background()); err != nil {
		t.Fatal(err)
	}
}

func TestUnauthorizedIsSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid or expired token"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.ListOrders(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("got %v, want ErrUnauthorized", err)
	}
}

func TestAPIErrorCarriesBackendMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "customer name is required"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.CreateOrder(context.Background(), CreateOrderRequest{})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("got %T, want *APIError", err)
	}
	if apiErr.Message != "customer name is required" {
		t.Errorf("message = %q", apiErr.Message)
	}
}

func TestShopStatusDecoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"settings": map[string]interface{}{
				"isOpen":             false,
				"closedMessage":      map[string]string{"en": "Closed for Eid", "ar": "مغلق للعيد"},
				"openingHours":       "10am - 10pm",
				"openingHoursArabic": "من ١٠ صباحاً إلى ١٠ مساءً",
			},
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	st, err := c.ShopStatus(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if st.IsOpen {
		t.Error("expected closed")
	}
	if st.ClosedMessage["en"] != "Closed for Eid" {
		t.Errorf("closedMessage.en = %q", st.ClosedMessage["en"])
	}
}

func TestLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["email"] != "admin@example.com" {
			t.Errorf("email = %q", body["email"])
		}
		json.NewEncoder(w).Encode(map[string]string{"token": "jwt-abc"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	tok, err := c.Login(context.Background(), "admin@example.com", "secret")
	if err != nil {
		t.Fatal(err)
	}
	if tok != "jwt-abc" {
		t.Errorf("token = %q", tok)
	}
}
