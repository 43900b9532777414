package upload

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"

	"bitbucket.org/edsplore/callqa/internal/pkg/messages"
	mng "bitbucket.org/edsplore/callqa/internal/pkg/mongo"
	"bitbucket.org/edsplore/callqa/internal/pkg/persistence"
	. "github.com/smartystreets/goconvey/convey"
)

type testSaver struct {
	err error
}

func (s testSaver) Save(name string, reader io.Reader) error {
	return s.err
}

type testCallSaver struct {
	calls []*persistence.Call
	err   error
}

func (s *testCallSaver) Save(data *persistence.Call) error {
	if s.err != nil {
		return s.err
	}
	s.calls = append(s.calls, data)
	return nil
}

type testAgents struct {
	err error
}

func (a testAgents) Get(id string) (*persistence.Agent, error) {
	if a.err != nil {
		return nil, a.err
	}
	return &persistence.Agent{ID: id, UserID: "u1"}, nil
}

type testSenderFunc func(msg interface{}, q string, rq string) error

func (f testSenderFunc) Send(msg interface{}, q string, rq string) error {
	return f(msg, q, rq)
}

func okSender() testSenderFunc {
	return func(msg interface{}, q string, rq string) error { return nil }
}

func newTestServiceData() *ServiceData {
	return &ServiceData{FileSaver: testSaver{}, CallSaver: &testCallSaver{},
		Agents: testAgents{}, MessageSender: okSender()}
}

func newTestBody(fileName string, fields map[string]string) (*bytes.Buffer, string) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if fileName != "" {
		part, _ := writer.CreateFormFile("file", fileName)
		_, _ = io.Copy(part, strings.NewReader("body"))
	}
	for k, v := range fields {
		writer.WriteField(k, v)
	}
	writer.Close()
	return body, writer.FormDataContentType()
}

func TestWrongPath(t *testing.T) {
	Convey("Given a HTTP request for /invalid", t, func() {
		req := httptest.NewRequest("GET", "/invalid", nil)
		resp := httptest.NewRecorder()

		Convey("When the request is handled by the Router", func() {
			NewRouter(&ServiceData{}).ServeHTTP(resp, req)

			Convey("Then the response should be a 404", func() {
				So(resp.Code, ShouldEqual, 404)
			})
		})
	})
}

func TestNoFile(t *testing.T) {
	Convey("Given a HTTP request for /upload", t, func() {
		req := httptest.NewRequest("POST", "/upload", nil)
		resp := httptest.NewRecorder()

		Convey("When the request is handled by the Router", func() {
			NewRouter(newTestServiceData()).ServeHTTP(resp, req)

			Convey("Then the response should be a 400", func() {
				So(resp.Code, ShouldEqual, 400)
			})
		})
	})
}

func TestPOST(t *testing.T) {
	Convey("Given a HTTP request for /upload", t, func() {
		body, contentType := newTestBody("call.mp3", map[string]string{"agent": "a1", "email": "a@a.a"})
		req := httptest.NewRequest("POST", "/upload", body)
		req.Header.Set("Content-Type", contentType)
		resp := httptest.NewRecorder()
		data := newTestServiceData()

		Convey("When the request is handled by the Router", func() {
			NewRouter(data).ServeHTTP(resp, req)

			Convey("Then the response should be a 200", func() {
				So(resp.Code, ShouldEqual, 200)
			})
			Convey("Then the response body should start with id", func() {
				So(resp.Body.String(), ShouldStartWith, `{"id":"`)
			})
			Convey("Then the call should be saved as pending", func() {
				cs := data.CallSaver.(*testCallSaver)
				So(len(cs.calls), ShouldEqual, 1)
				So(cs.calls[0].Status, ShouldEqual, "pending")
				So(cs.calls[0].AgentID, ShouldEqual, "a1")
				So(cs.calls[0].FilePath, ShouldEndWith, ".mp3")
			})
		})
	})
}

func TestPOST_NoAgent(t *testing.T) {
	Convey("Given a HTTP request without agent", t, func() {
		body, contentType := newTestBody("call.mp3", nil)
		req := httptest.NewRequest("POST", "/upload", body)
		req.Header.Set("Content-Type", contentType)
		resp := httptest.NewRecorder()

		Convey("When the request is handled by the Router", func() {
			NewRouter(newTestServiceData()).ServeHTTP(resp, req)

			Convey("Then the response should be a 400", func() {
				So(resp.Code, ShouldEqual, 400)
			})
		})
	})
}

func TestPOST_UnknownAgent(t *testing.T) {
	Convey("Given a HTTP request with unknown agent", t, func() {
		body, contentType := newTestBody("call.mp3", map[string]string{"agent": "a1"})
		req := httptest.NewRequest("POST", "/upload", body)
		req.Header.Set("Content-Type", contentType)
		resp := httptest.NewRecorder()
		data := newTestServiceData()
		data.Agents = testAgents{err: mng.ErrAgentNotFound}

		Convey("When the request is handled by the Router", func() {
			NewRouter(data).ServeHTTP(resp, req)

			Convey("Then the response should be a 400", func() {
				So(resp.Code, ShouldEqual, 400)
			})
		})
	})
}

func TestPOST_WrongEmail(t *testing.T) {
	Convey("Given a HTTP request with wrong email", t, func() {
		body, contentType := newTestBody("call.mp3", map[string]string{"agent": "a1", "email": "olia"})
		req := httptest.NewRequest("POST", "/upload", body)
		req.Header.Set("Content-Type", contentType)
		resp := httptest.NewRecorder()

		Convey("When the request is handled by the Router", func() {
			NewRouter(newTestServiceData()).ServeHTTP(resp, req)

			Convey("Then the response should be a 400", func() {
				So(resp.Code, ShouldEqual, 400)
			})
		})
	})
}

func TestPOST_WrongExtension(t *testing.T) {
	Convey("Given a HTTP request with a text file", t, func() {
		body, contentType := newTestBody("call.txt", map[string]string{"agent": "a1"})
		req := httptest.NewRequest("POST", "/upload", body)
		req.Header.Set("Content-Type", contentType)
		resp := httptest.NewRecorder()

		Convey("When the request is handled by the Router", func() {
			NewRouter(newTestServiceData()).ServeHTTP(resp, req)

			Convey("Then the response should be a 400", func() {
				So(resp.Code, ShouldEqual, 400)
			})
		})
	})
}

func TestPOST_UnknownParam(t *testing.T) {
	Convey("Given a HTTP request with unknown form param", t, func() {
		body, contentType := newTestBody("call.mp3", map[string]string{"agent": "a1", "olia": "v"})
		req := httptest.NewRequest("POST", "/upload", body)
		req.Header.Set("Content-Type", contentType)
		resp := httptest.NewRecorder()

		Convey("When the request is handled by the Router", func() {
			NewRouter(newTestServiceData()).ServeHTTP(resp, req)

			Convey("Then the response should be a 400", func() {
				So(resp.Code, ShouldEqual, 400)
			})
		})
	})
}

func TestPOST_Sender(t *testing.T) {
	Convey("Given a HTTP request for /upload", t, func() {
		body, contentType := newTestBody("call.wav", map[string]string{"agent": "a1"})
		req := httptest.NewRequest("POST", "/upload", body)
		req.Header.Set("Content-Type", contentType)
		resp := httptest.NewRecorder()
		data := newTestServiceData()
		var gotQueue string
		data.MessageSender = testSenderFunc(func(msg interface{}, q string, rq string) error {
			gotQueue = q
			return nil
		})

		Convey("When the request is handled by the Router", func() {
			NewRouter(data).ServeHTTP(resp, req)

			Convey("Then the process message should be sent", func() {
				So(resp.Code, ShouldEqual, 200)
				So(gotQueue, ShouldEqual, messages.ProcessCall)
			})
		})
	})
}

func TestPOST_SenderFails(t *testing.T) {
	Convey("Given a HTTP request for /upload", t, func() {
		body, contentType := newTestBody("call.wav", map[string]string{"agent": "a1"})
		req := httptest.NewRequest("POST", "/upload", body)
		req.Header.Set("Content-Type", contentType)
		resp := httptest.NewRecorder()
		data := newTestServiceData()
		data.MessageSender = testSenderFunc(func(msg interface{}, q string, rq string) error {
			return errors.New("Can not send")
		})

		Convey("When the request is handled by the Router", func() {
			NewRouter(data).ServeHTTP(resp, req)

			Convey("Then the response should be a 500", func() {
				So(resp.Code, ShouldEqual, 500)
			})
		})
	})
}

func TestPOST_SaverFails(t *testing.T) {
	Convey("Given a HTTP request for /upload", t, func() {
		body, contentType := newTestBody("call.wav", map[string]string{"agent": "a1"})
		req := httptest.NewRequest("POST", "/upload", body)
		req.Header.Set("Content-Type", contentType)
		resp := httptest.NewRecorder()
		data := newTestServiceData()
		data.FileSaver = testSaver{err: errors.New("can not save")}

		Convey("When the request is handled by the Router", func() {
			NewRouter(data).ServeHTTP(resp, req)

			Convey("Then the response should be a 500", func() {
				So(resp.Code, ShouldEqual, 500)
			})
		})
	})
}

func TestPOST_CallSaverFails(t *testing.T) {
	Convey("Given a HTTP request for /upload", t, func() {
		body, contentType := newTestBody("call.wav", map[string]string{"agent": "a1"})
		req := httptest.NewRequest("POST", "/upload", body)
		req.Header.Set("Content-Type", contentType)
		resp := httptest.NewRecorder()
		data := newTestServiceData()
		data.CallSaver = &testCallSaver{err: errors.New("db down")}

		Convey("When the request is handled by the Router", func() {
			NewRouter(data).ServeHTTP(resp, req)

			Convey("Then the response should be a 500", func() {
				So(resp.Code, ShouldEqual, 500)
			})
		})
	})
}
