package api_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/jonwraymond/dispatchops/api"
	"github.com/jonwraymond/dispatchops/dispatch"
	"github.com/jonwraymond/dispatchops/provider"
)

func ExampleHandler_Send() {
	d, _ := dispatch.New(provider.Accepting("primary"), provider.Accepting("secondary"))
	defer d.Close(context.Background())

	h := api.NewHandler(d, api.Config{})

	body := `{"recipient":"test@example.com","subject":"Hello","body":"hi","idempotency_key":"demo-1"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/messages/send", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	fmt.Println(rec.Code)
	fmt.Print(rec.Body.String())
	// Output:
	// 200
	// {"idempotency_key":"demo-1","sent":true,"outcome":"sent","status":"sent"}
}
