package mail

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/aliyun/alibaba-cloud-sdk-go/sdk/requests"
	"github.com/aliyun/alibaba-cloud-sdk-go/services/dm"
	eParser "github.com/go-errors/errors"

	"studbook/config"
	"studbook/log"
)

var (
	dmClient *dm.Client
	enabled  bool

	// deliver hands a finished mail to the provider.
	deliver = sendByAliyun
)

// Init inits aliyun mail config.
func Init(enableMail bool) {
	var err error

	enabled = enableMail
	if !enableMail {
		return
	}

	if err := config.LoadAliyunMailConfig(); err != nil {
		panic(err)
	}

	mailCfg := config.GetAliyunMailConfig()

	dmClient, err = dm.NewClientWithAccessKey(
		mailCfg.Region,
		mailCfg.AccessKeyID,
		mailCfg.AccessKeySecret)

	if err != nil {
		panic(err)
	}
}

// AlertIfErr captures a panic, logs its stack and mails it.
// Use it deferred at the top of every long running goroutine.
// Without mail enabled the panic is left to crash the process.
func AlertIfErr() {
	if !enabled {
		return
	}

	r := recover()
	if r == nil {
		return
	}

	var err error
	switch t := r.(type) {
	case string:
		err = errors.New(t)
	case error:
		err = t
	default:
		err = fmt.Errorf("unknown error: %v", t)
	}

	err = errors.New(eParser.Wrap(err, 0).ErrorStack())
	log.Error.Println(err)
	SendNotify("Error Detected", err.Error())
}

// SendNotify sends mail to configured receivers.
func SendNotify(subject string, content string) {
	if !enabled {
		return
	}

	if content == "" {
		log.Printf("Mail content cannot be empty\n")
		debug.PrintStack()
		return
	}

	if err := deliver(subject, content); err != nil {
		log.Error.Printf("Failed to send mail %q: %v\n", subject, err)
	}
}

func sendByAliyun(subject string, content string) error {
	mailCfg := config.GetAliyunMailConfig()

	req := dm.CreateSingleSendMailRequest()
	req.AccountName = mailCfg.AccountName
	req.ReplyToAddress = requests.NewBoolean(false)
	req.AddressType = requests.NewInteger(1)
	if config.GetLabel() != "" {
		req.FromAlias = fmt.Sprintf("[%s]-studbook", config.GetLabel())
	} else {
		req.FromAlias = "studbook"
	}
	req.Subject = subject
	req.TextBody = content
	req.ToAddress = strings.Join(mailCfg.Receiver, ",")

	_, err := dmClient.SingleSendMail(req)
	return err
}
