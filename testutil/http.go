package testutil

import (
	"net/http"
	"testing"

	"github.com/gavv/httpexpect/v2"
)

// NewExpect returns an httpexpect client bound to handler without a network listener.
func NewExpect(t *testing.T, handler http.Handler) *httpexpect.Expect {
	return httpexpect.WithConfig(httpexpect.Config{
		BaseURL: "http://statsboard.test",
		Client: &http.Client{
			Transport: httpexpect.NewBinder(handler),
			Jar:       httpexpect.NewCookieJar(),
		},
		Reporter: httpexpect.NewAssertReporter(t),
		Printers: []httpexpect.Printer{
			httpexpect.NewCompactPrinter(t),
		},
	})
}
