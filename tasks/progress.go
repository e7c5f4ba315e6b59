package tasks

import (
	"fmt"
	"math"
	"time"

	"studbook/util"
)

var now = time.Now

// Progress stores sale progress of a batch toward the point it closes.
type Progress struct {
	InitPercentage   float64
	InitTime         time.Time
	Percentage       float64
	RemainingTimeStr string
	// Finished indicates the batch closed.
	Finished bool
	// MailSent is a mark that when the batch closes, send notify mail once.
	MailSent bool
}

func (progInfo *Progress) updatePercentage(percentage float64) {
	progInfo.Percentage = math.Floor(percentage*10000) / 10000
}

func (progInfo *Progress) extractSeconds(secondsLeft uint64) {
	// It is meaningless to show remaining time once the batch is sold out.
	if progInfo.Finished || secondsLeft == 0 {
		progInfo.RemainingTimeStr = ""
	} else {
		progInfo.RemainingTimeStr = fmt.Sprintf("(%s left)", util.SecondsToHuman(secondsLeft))
	}
}

// GetEstimatedRemainingTime extrapolates the time until curr reaches total
// from the rate observed since the first call.
func GetEstimatedRemainingTime(curr int64, total int64, progInfo *Progress) {
	percentage := float64(curr) * 100 / float64(total)

	if progInfo.InitTime.IsZero() {
		progInfo.InitPercentage = percentage
		progInfo.InitTime = now()
		progInfo.updatePercentage(percentage)
		return
	}

	if curr >= total {
		progInfo.extractSeconds(0)
		progInfo.Percentage = 100
		return
	}

	elapsedTime := now().Sub(progInfo.InitTime)
	progInfo.updatePercentage(percentage)

	elapsedPercentage := percentage - progInfo.InitPercentage
	// Nothing sold since the first call, no rate to extrapolate from.
	if elapsedPercentage <= 0 {
		progInfo.RemainingTimeStr = ""
		return
	}

	secondsLeft := elapsedTime.Seconds() / elapsedPercentage * (100 - percentage)
	progInfo.extractSeconds(uint64(math.Ceil(secondsLeft)))
}
