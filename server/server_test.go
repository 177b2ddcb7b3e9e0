package server_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/arconv/config"
	"github.com/sarchlab/arconv/server"
)

var _ = Describe("Server", func() {
	var (
		ts   *httptest.Server
		logs bytes.Buffer
	)

	BeforeEach(func() {
		logs.Reset()
		logger := slog.New(slog.NewTextHandler(&logs, nil))
		ts = httptest.NewServer(server.New(config.Default(), logger))
	})

	AfterEach(func() {
		ts.Close()
	})

	post := func(path, body string) (*http.Response, server.Response) {
		resp, err := http.Post(ts.URL+path, "application/json", bytes.NewBufferString(body))
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()

		var out server.Response
		Expect(json.NewDecoder(resp.Body).Decode(&out)).To(Succeed())
		return resp, out
	}

	It("should encode", func() {
		resp, out := post("/v1/encode", `{"code": "[32: offset + 0x4] = 0x12345678\nEndAll"}`)
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(out.Text).To(Equal("00000004 12345678\nD2000000 00000000"))
		Expect(out.Error).To(BeNil())
		Expect(out.ID).NotTo(BeEmpty())
		Expect(resp.Header.Get("X-Request-ID")).To(Equal(out.ID))
		Expect(logs.String()).To(ContainSubstring("Request=" + out.ID))
	})

	It("should decode", func() {
		resp, out := post("/v1/decode", `{"code": "00000004 12345678"}`)
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(out.Text).To(Equal("[32: offset + 0x0000004] = 0x12345678"))
		Expect(out.Issues).To(HaveLen(1))
		Expect(out.Issues[0].Type).To(Equal("ENDALL"))
		Expect(logs.String()).To(MatchRegexp(`level=INFO\+1 msg=Line Request=` + out.ID))
	})

	It("should apply per-request options over the defaults", func() {
		_, out := post("/v1/encode",
			`{"code": "Rept 0", "options": {"suppress_zero_repeat_warning": true}}`)
		Expect(out.Text).To(Equal("C0000000 00000000"))
		Expect(out.Issues).To(HaveLen(1))
		Expect(out.Issues[0].Type).To(Equal("ENDALL"))

		_, out = post("/v1/encode", `{"code": "EndAll", "options": {"render_filler_as_zero": false}}`)
		Expect(out.Text).To(Equal("D2?????? ????????"))
	})

	It("should answer 422 on conversion errors", func() {
		resp, out := post("/v1/encode", `{"code": "[32: offset] = 0x1\nEndIf"}`)
		Expect(resp.StatusCode).To(Equal(http.StatusUnprocessableEntity))
		Expect(out.Text).To(BeEmpty())
		Expect(out.Error).NotTo(BeNil())
		Expect(out.Error.Line).To(Equal(2))
		Expect(out.Error.Internal).To(BeFalse())
		Expect(out.Diagnostics[len(out.Diagnostics)-1].Severity).To(Equal("error"))
	})

	It("should reject malformed requests", func() {
		resp, out := post("/v1/encode", `{"source": "EndAll"}`)
		Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		Expect(out.Error).NotTo(BeNil())
	})

	It("should only accept POST for conversions", func() {
		resp, err := http.Get(ts.URL + "/v1/encode")
		Expect(err).NotTo(HaveOccurred())
		resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusMethodNotAllowed))

		resp, err = http.Post(ts.URL+"/v1/healthz", "application/json", nil)
		Expect(err).NotTo(HaveOccurred())
		resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusMethodNotAllowed))
	})

	It("should answer 404 for unknown paths", func() {
		resp, err := http.Get(ts.URL + "/v1/assemble")
		Expect(err).NotTo(HaveOccurred())
		resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
	})

	It("should report health", func() {
		resp, err := http.Get(ts.URL + "/v1/healthz")
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(string(body)).To(ContainSubstring(`"status":"ok"`))
	})
})
