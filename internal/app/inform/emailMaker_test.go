package inform

import (
	"testing"
	"time"

	"github.com/spf13/viper"

	. "github.com/smartystreets/goconvey/convey"
)

func TestFailsInit(t *testing.T) {
	Convey("Given no url", t, func() {
		m, err := newSimpleEmailMaker(viper.New())
		Convey("Constructor should fail", func() {
			So(err, ShouldNotBeNil)
			So(m, ShouldBeNil)
		})
	})
}

func TestInit_OK(t *testing.T) {
	Convey("Given url", t, func() {
		v := viper.New()
		v.Set("mail.url", "url")
		m, err := newSimpleEmailMaker(v)
		Convey("Constructor should succeed", func() {
			So(err, ShouldBeNil)
			So(m.url, ShouldEqual, "url")
		})
	})
}

func TestEmail(t *testing.T) {
	Convey("Given config", t, func() {
		v := viper.New()
		v.Set("mail.url", "http://dashboard/call/{{ID}}")
		v.Set("mail.Finished.subject", "subject")
		v.Set("mail.Finished.text", "Call {{ID}} done. See {{URL}} at {{DATE}}")
		v.Set("smtp.username", "from@test.com")
		m, _ := newSimpleEmailMaker(v)
		data := Data{}
		data.Email = "email@test.com"
		data.ID = "id1"
		data.MsgType = "Finished"
		data.MsgTime = time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
		Convey("Mail should be made", func() {
			e, err := m.Make(&data)
			So(err, ShouldBeNil)
			So(e.Subject, ShouldEqual, "subject")
			So(e.To, ShouldContain, "email@test.com")
			So(e.From, ShouldEqual, "from@test.com")
			So(string(e.Text), ShouldEqual,
				"Call id1 done. See http://dashboard/call/id1 at 2026-08-30 10:00:00")
		})
		Convey("Should fail no subject", func() {
			v.Set("mail.Finished.subject", "")
			_, err := m.Make(&data)
			So(err, ShouldNotBeNil)
		})
		Convey("Should fail no text", func() {
			v.Set("mail.Finished.text", "")
			_, err := m.Make(&data)
			So(err, ShouldNotBeNil)
		})
		Convey("Should fail no from", func() {
			v.Set("smtp.username", "")
			_, err := m.Make(&data)
			So(err, ShouldNotBeNil)
		})
		Convey("Should fail unknown type", func() {
			data.MsgType = "Other"
			_, err := m.Make(&data)
			So(err, ShouldNotBeNil)
		})
	})
}
