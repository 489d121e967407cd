package upstream

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/jangala-dev/nb-esp32-firmware/internal/logx"
)

// Response mirrors original_source/http.rs's Response: status, raw body,
// and the content type used to decide how to coerce an RPC result.
type Response struct {
	Status      int
	Body        []byte
	ContentType string
}

// HTTPClient performs one-shot requests: a fresh net/http.Client (and thus
// a fresh TCP+TLS handshake) per call. Persistent connections are
// deliberately avoided, following the documented corruption bug on
// connection close that original_source/http.rs works around by never
// reusing its EspHttpConnection across requests.
type HTTPClient struct{}

func NewHTTPClient() *HTTPClient {
	return &HTTPClient{}
}

// Do attaches the given headers plus a computed Content-Length, then reads
// the response body in 256-byte chunks to EOF (spec §4.4).
func (c *HTTPClient) Do(method, url string, headers map[string]string, body []byte) (Response, error) {
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		return Response{}, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("Content-Length", strconv.Itoa(len(body)))
	req.Close = true // one connection per request, never reused

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	resp, err := client.Do(req)
	if err != nil {
		logx.Warnf("upstream request to %s failed: %v", url, err)
		return Response{}, fmt.Errorf("failed to reach %s", url)
	}
	defer resp.Body.Close()

	var out bytes.Buffer
	buf := make([]byte, 256)
	for {
		n, rerr := resp.Body.Read(buf)
		if n > 0 {
			out.Write(buf[:n])
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return Response{}, rerr
		}
		if n == 0 {
			break
		}
	}

	return Response{
		Status:      resp.StatusCode,
		Body:        out.Bytes(),
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}
