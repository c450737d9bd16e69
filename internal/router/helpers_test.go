package router

import (
	"fmt"
	"io"
	"net/http"
	"strings"
)

func expectMetric(res *http.Response, line string) error {
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}
	if !strings.Contains(string(body), line) {
		return fmt.Errorf("metric %q not found in:\n%s", line, body)
	}
	return nil
}
