package inform

import (
	"encoding/json"
	"time"

	"bitbucket.org/edsplore/callqa/internal/pkg/cmdapp"
	"bitbucket.org/edsplore/callqa/internal/pkg/messages"
	"bitbucket.org/edsplore/callqa/internal/pkg/utils"
	"github.com/jordan-wright/email"
	"github.com/pkg/errors"
	"github.com/streadway/amqp"
)

// Data is the information passed to the email maker
type Data struct {
	ID      string
	Email   string
	MsgType string
	MsgTime time.Time
}

// Sender sends emails
type Sender interface {
	Send(email *email.Email) error
}

// EmailMaker prepares the email
type EmailMaker interface {
	Make(data *Data) (*email.Email, error)
}

// EmailRetriever returns the uploader email by call ID.
// Empty result means the upload carried no email.
type EmailRetriever interface {
	Get(ID string) (string, error)
}

// Locker guards against sending the same notification twice
type Locker interface {
	Lock(id string, lockKey string) error
	UnLock(id string, lockKey string, value *int) error
}

// ServiceData keeps data required for service work
type ServiceData struct {
	workCh         <-chan amqp.Delivery
	emailSender    Sender
	emailMaker     EmailMaker
	emailRetriever EmailRetriever
	locker         Locker
	location       *time.Location

	fc *utils.MultiCloseChannel
}

// StartWorkerService starts the event queue listener service
func StartWorkerService(data *ServiceData) error {
	cmdapp.Log.Infof("Starting listen for messages")
	if data.emailMaker == nil {
		return errors.New("No email maker")
	}
	if data.emailRetriever == nil {
		return errors.New("No email retriever")
	}
	if data.emailSender == nil {
		return errors.New("No sender")
	}
	if data.locker == nil {
		return errors.New("No locker")
	}
	if data.workCh == nil {
		return errors.New("No work channel")
	}
	if data.fc == nil {
		return errors.New("No close channel")
	}

	go listenQueue(data)
	return nil
}

// work sends one notification email
func work(data *ServiceData, message *messages.InformMessage) error {
	cmdapp.Log.Infof("Got inform task %s for ID: %s", message.Type, message.ID)

	mailData := Data{}
	mailData.ID = message.ID
	mailData.MsgTime = toLocalTime(data, message.At)
	mailData.MsgType = message.Type

	var err error
	mailData.Email, err = data.emailRetriever.Get(message.ID)
	if err != nil {
		cmdapp.Log.Error(err)
		return errors.Wrap(err, "Can't retrieve email")
	}
	if mailData.Email == "" {
		cmdapp.Log.Infof("No email for ID %s, skipping", message.ID)
		return nil
	}

	email, err := data.emailMaker.Make(&mailData)
	if err != nil {
		cmdapp.Log.Error(err)
		return errors.Wrap(err, "Can't prepare email")
	}

	err = data.locker.Lock(mailData.ID, mailData.MsgType)
	if err != nil {
		cmdapp.Log.Error(err)
		return errors.Wrap(err, "Can't lock mail table")
	}
	var unlockValue = 0
	defer data.locker.UnLock(mailData.ID, mailData.MsgType, &unlockValue)

	err = data.emailSender.Send(email)
	if err != nil {
		cmdapp.Log.Error(err)
		return errors.Wrap(err, "Can't send email")
	}
	unlockValue = 2
	return nil
}

func listenQueue(data *ServiceData) {
	for d := range data.workCh {
		redeliver, err := processMsg(&d, data)
		if err != nil {
			cmdapp.Log.Error("Message error. ", err)
			d.Nack(false, redeliver && !d.Redelivered) // retry once
			continue
		}
		d.Ack(false)
	}
	cmdapp.Log.Infof("Stopped listening queue")
	data.fc.Close()
}

func toLocalTime(data *ServiceData, t time.Time) time.Time {
	if data.location != nil {
		return t.In(data.location)
	}
	return t
}

// processMsg returns true if the message is worth a retry on error
func processMsg(d *amqp.Delivery, data *ServiceData) (bool, error) {
	var message messages.InformMessage
	if err := json.Unmarshal(d.Body, &message); err != nil {
		return false, errors.Wrap(err, "Can't unmarshal message "+string(d.Body))
	}
	err := work(data, &message)
	cmdapp.Log.Infof("Msg processed")
	return true, err
}
