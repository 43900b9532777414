package inform

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"bitbucket.org/edsplore/callqa/internal/pkg/messages"
	"bitbucket.org/edsplore/callqa/internal/pkg/utils"
	"github.com/jordan-wright/email"
	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
)

func TestStartWorkerService_Validation(t *testing.T) {
	td := newTestServiceData()
	assert.Nil(t, StartWorkerService(td.data))

	tests := []func(d *ServiceData){
		func(d *ServiceData) { d.emailMaker = nil },
		func(d *ServiceData) { d.emailRetriever = nil },
		func(d *ServiceData) { d.emailSender = nil },
		func(d *ServiceData) { d.locker = nil },
		func(d *ServiceData) { d.workCh = nil },
		func(d *ServiceData) { d.fc = nil },
	}
	for _, f := range tests {
		td := newTestServiceData()
		f(td.data)
		assert.NotNil(t, StartWorkerService(td.data))
	}
}

func TestWork_SendsEmail(t *testing.T) {
	td := newTestServiceData()

	td.send(t, newTestMsg("id1", messages.InformTypeFinished))
	close(td.wc)
	<-td.data.fc.C

	assert.Equal(t, 1, td.ack.acked)
	assert.Equal(t, 0, td.ack.nacked)
	assert.Equal(t, 1, len(td.sender.sent))
	assert.Equal(t, []string{"test@test.com"}, td.sender.sent[0].To)
	assert.Equal(t, "id1", td.locker.lockedID)
	assert.Equal(t, messages.InformTypeFinished, td.locker.lockedKey)
	assert.Equal(t, 2, td.locker.unlockValue)
}

func TestWork_SkipsWhenNoEmail(t *testing.T) {
	td := newTestServiceData()
	td.retriever.email = ""

	td.send(t, newTestMsg("id1", messages.InformTypeFailed))
	close(td.wc)
	<-td.data.fc.C

	assert.Equal(t, 1, td.ack.acked)
	assert.Equal(t, 0, len(td.sender.sent))
	assert.Equal(t, "", td.locker.lockedID)
}

func TestWork_RetrieverFails(t *testing.T) {
	td := newTestServiceData()
	td.retriever.err = errors.New("db down")

	td.send(t, newTestMsg("id1", messages.InformTypeFinished))
	close(td.wc)
	<-td.data.fc.C

	assert.Equal(t, 0, td.ack.acked)
	assert.Equal(t, 1, td.ack.nacked)
	assert.Equal(t, 0, len(td.sender.sent))
}

func TestWork_MakerFails(t *testing.T) {
	td := newTestServiceData()
	td.maker.err = errors.New("no template")

	td.send(t, newTestMsg("id1", messages.InformTypeFinished))
	close(td.wc)
	<-td.data.fc.C

	assert.Equal(t, 1, td.ack.nacked)
	assert.Equal(t, 0, len(td.sender.sent))
}

func TestWork_AlreadyLocked(t *testing.T) {
	td := newTestServiceData()
	td.locker.lockErr = errors.New("locked")

	td.send(t, newTestMsg("id1", messages.InformTypeFinished))
	close(td.wc)
	<-td.data.fc.C

	assert.Equal(t, 1, td.ack.nacked)
	assert.Equal(t, 0, len(td.sender.sent))
}

func TestWork_SenderFails(t *testing.T) {
	td := newTestServiceData()
	td.sender.err = errors.New("smtp down")

	td.send(t, newTestMsg("id1", messages.InformTypeFinished))
	close(td.wc)
	<-td.data.fc.C

	assert.Equal(t, 1, td.ack.nacked)
	assert.Equal(t, 0, td.locker.unlockValue)
}

func TestWork_WrongMsg(t *testing.T) {
	td := newTestServiceData()

	err := StartWorkerService(td.data)
	assert.Nil(t, err)
	d := amqp.Delivery{Body: []byte("not a json"), Acknowledger: td.ack}
	td.wc <- d
	close(td.wc)
	<-td.data.fc.C

	assert.Equal(t, 0, td.ack.acked)
	assert.Equal(t, 1, td.ack.nacked)
	assert.Equal(t, 0, len(td.sender.sent))
}

func TestToLocalTime(t *testing.T) {
	data := &ServiceData{}
	now := time.Now()
	assert.Equal(t, now, toLocalTime(data, now))

	loc, err := time.LoadLocation("UTC")
	assert.Nil(t, err)
	data.location = loc
	assert.Equal(t, now.In(loc), toLocalTime(data, now))
}

type testServiceData struct {
	data      *ServiceData
	wc        chan amqp.Delivery
	ack       *testAck
	sender    *testEmailSender
	maker     *testEmailMaker
	retriever *testEmailRetriever
	locker    *testLocker
}

func newTestServiceData() *testServiceData {
	res := testServiceData{}
	res.wc = make(chan amqp.Delivery)
	res.ack = &testAck{}
	res.sender = &testEmailSender{}
	res.maker = &testEmailMaker{}
	res.retriever = &testEmailRetriever{email: "test@test.com"}
	res.locker = &testLocker{}
	res.data = &ServiceData{}
	res.data.workCh = res.wc
	res.data.emailSender = res.sender
	res.data.emailMaker = res.maker
	res.data.emailRetriever = res.retriever
	res.data.locker = res.locker
	res.data.fc = utils.NewMultiCloseChannel()
	return &res
}

func (td *testServiceData) send(t *testing.T, msg *messages.InformMessage) {
	t.Helper()
	err := StartWorkerService(td.data)
	assert.Nil(t, err)
	body, err := json.Marshal(msg)
	assert.Nil(t, err)
	td.wc <- amqp.Delivery{Body: body, Acknowledger: td.ack}
}

func newTestMsg(id string, msgType string) *messages.InformMessage {
	return messages.NewInformMessage(id, msgType, time.Now())
}

type testAck struct {
	acked  int
	nacked int
}

func (a *testAck) Ack(tag uint64, multiple bool) error {
	a.acked++
	return nil
}

func (a *testAck) Nack(tag uint64, multiple bool, requeue bool) error {
	a.nacked++
	return nil
}

func (a *testAck) Reject(tag uint64, requeue bool) error {
	a.nacked++
	return nil
}

type testEmailSender struct {
	sent []*email.Email
	err  error
}

func (s *testEmailSender) Send(e *email.Email) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, e)
	return nil
}

type testEmailMaker struct {
	err error
}

func (m *testEmailMaker) Make(data *Data) (*email.Email, error) {
	if m.err != nil {
		return nil, m.err
	}
	r := email.NewEmail()
	r.To = []string{data.Email}
	r.Subject = "Call " + data.ID + " " + data.MsgType
	return r, nil
}

type testEmailRetriever struct {
	email string
	err   error
}

func (r *testEmailRetriever) Get(ID string) (string, error) {
	return r.email, r.err
}

type testLocker struct {
	lockedID    string
	lockedKey   string
	lockErr     error
	unlockValue int
}

func (l *testLocker) Lock(id string, lockKey string) error {
	if l.lockErr != nil {
		return l.lockErr
	}
	l.lockedID = id
	l.lockedKey = lockKey
	return nil
}

func (l *testLocker) UnLock(id string, lockKey string, value *int) error {
	if value != nil {
		l.unlockValue = *value
	}
	return nil
}
