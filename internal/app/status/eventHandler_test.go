package status

import (
	"errors"
	"testing"
	"time"

	"bitbucket.org/edsplore/callqa/internal/app/status/api"
	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
)

type testdata struct {
	c     chan amqp.Delivery
	data  *ServiceData
	fc    chan bool
	waitc chan bool
	f     func()
	fail  bool
	i     int
}

func initTestData(t *testing.T) *testdata {
	res := testdata{}
	res.c = make(chan amqp.Delivery)
	res.data = &ServiceData{}
	res.data.StatusProvider = testStatusFunc(
		func(ID string) (*api.CallStatus, error) {
			return &api.CallStatus{ID: ID, Status: "completed"}, nil
		})
	res.fc = make(chan bool)
	res.waitc = make(chan bool)
	res.f = func() {
		listenQueue(res.c, res.data, res.fc)
		res.waitc <- true
	}
	return &res
}

func Test_ListenQueue_NoConnection(t *testing.T) {
	td := initTestData(t)

	go td.f()
	td.c <- amqp.Delivery{Body: []byte("id")}
	close(td.c)
	<-td.waitc
}

func Test_ListenQueue_MsgSentWithID(t *testing.T) {
	td := initTestData(t)

	conn := &wsConnMock{}
	saveConnection(conn, "id")
	defer deleteConnection(conn)
	go td.f()
	td.c <- amqp.Delivery{Body: []byte("id")}
	close(td.c)
	<-td.waitc

	assert.Equal(t, 1, len(conn.written))
	st, _ := conn.written[0].(*api.CallStatus)
	assert.NotNil(t, st)
	assert.Equal(t, "id", st.ID)
	assert.Equal(t, "completed", st.Status)
}

func Test_ListenQueue_WithFailingProvider(t *testing.T) {
	td := initTestData(t)
	td.data.StatusProvider = testStatusFunc(
		func(ID string) (*api.CallStatus, error) {
			return nil, errors.New("error")
		})

	conn := &wsConnMock{}
	saveConnection(conn, "id")
	defer deleteConnection(conn)
	go td.f()
	td.c <- amqp.Delivery{Body: []byte("id")}
	close(td.c)
	<-td.waitc

	assert.Equal(t, 0, len(conn.written))
}

func Test_ListenQueue_WithFailingConnection(t *testing.T) {
	td := initTestData(t)

	conn := &wsConnMock{writeErr: errors.New("error")}
	saveConnection(conn, "id")
	defer deleteConnection(conn)
	go td.f()
	td.c <- amqp.Delivery{Body: []byte("id")}
	close(td.c)
	<-td.waitc
}

func Test_ListenQueue_MultipleConnections(t *testing.T) {
	td := initTestData(t)

	conn := &wsConnMock{}
	conn1 := &wsConnMock{}
	saveConnection(conn, "id1")
	defer deleteConnection(conn)
	saveConnection(conn1, "id1")
	defer deleteConnection(conn1)
	go td.f()
	td.c <- amqp.Delivery{Body: []byte("id1")}
	close(td.c)
	<-td.waitc

	assert.Equal(t, 1, len(conn.written))
	assert.Equal(t, 1, len(conn1.written))
}

func initTestDataRegisterQueue(t *testing.T) *testdata {
	res := initTestData(t)
	res.fail = true
	res.i = 0

	res.data.EventChannelFunc = func() (<-chan amqp.Delivery, error) {
		res.i++
		if res.fail {
			return nil, errors.New("error")
		}
		return res.c, nil
	}
	res.f = func() {
		registerQueue(res.data, res.fc, time.Millisecond)
		res.waitc <- true
	}
	return res
}

func Test_RegisteringQueue_FunctionFails(t *testing.T) {
	td := initTestDataRegisterQueue(t)

	go td.f()
	time.Sleep(time.Millisecond * 100)
	close(td.fc)
	<-td.waitc
	assert.True(t, td.i > 1)
}

func Test_RegisteringQueue_Restores(t *testing.T) {
	td := initTestDataRegisterQueue(t)

	go td.f()
	time.Sleep(time.Millisecond * 100)
	td.fail = false
	td.i = 0
	time.Sleep(time.Millisecond * 100)
	close(td.fc)
	close(td.c)
	<-td.waitc
	assert.Equal(t, td.i, 1)
}

func Test_RegisteringQueue_NoFailure(t *testing.T) {
	td := initTestDataRegisterQueue(t)
	td.fail = false
	go td.f()
	time.Sleep(time.Millisecond * 100)
	close(td.fc)
	close(td.c)
	<-td.waitc
	assert.Equal(t, td.i, 1)
}
