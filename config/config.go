package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
	validator "gopkg.in/go-playground/validator.v9"

	"studbook/batch"
	"studbook/log"
	"studbook/util"
)

type config struct {
	// MySQL configs. Leave Database empty to keep ledger state in memory.
	User     string
	Password string
	Hostname string
	Port     string
	Database string

	// Label sets log output prefix.
	Label string

	// RPCs lists asset ledger nodes. Leave empty to run an in-process ledger.
	RPCs []string `mapstructure:"rpc_url"`

	// Admin is the only address allowed to open and close batches.
	Admin string `validate:"required,neoaddr"`

	Schedules []BatchSchedule `mapstructure:"batch_schedule" validate:"dive"`

	// ReportInterval is the number of seconds between capacity reports. 0 disables them.
	ReportInterval int `mapstructure:"report_interval" validate:"gte=0"`

	// TraitCacheMinutes sets how long horse traits stay cached. Recommend value: 60.
	TraitCacheMinutes int `mapstructure:"trait_cache_minutes" validate:"gte=0"`

	// AliyunMail is an optional config which will be used in mail alert package.
	AliyunMail AliyunMailConfig `mapstructure:"aliyun_mail"`
}

// BatchSchedule opens and closes a batch on cron expressions.
type BatchSchedule struct {
	Batch uint64 `validate:"required"`
	Open  string `validate:"required"`
	Close string
}

// AliyunMailConfig is the struct for aliyun mail configs.
type AliyunMailConfig struct {
	AccountName     string
	Region          string
	AccessKeyID     string
	AccessKeySecret string
	Receiver        []string
}

var (
	cfg      config
	cfgLock  sync.RWMutex
	validate = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("neoaddr", func(fl validator.FieldLevel) bool {
		return util.AddressValid(fl.Field().String())
	})
	return v
}

// get returns the current config. A published config is never mutated.
func get() config {
	cfgLock.RLock()
	defer cfgLock.RUnlock()
	return cfg
}

func set(c config) {
	cfgLock.Lock()
	defer cfgLock.Unlock()
	cfg = c
}

// Load reads config from ./config and watches the file for changes.
func Load(display bool) {
	viper.SetConfigName("config")
	viper.AddConfigPath("./config")
	// Incase test cases require loading configs.
	viper.AddConfigPath("../config")

	c, err := load(display)
	if err != nil {
		panic(err)
	}

	if err := check(c); err != nil {
		panic(err)
	}

	set(update(c))

	log.UpdatePrefix(GetLabel())

	viper.WatchConfig()
	viper.OnConfigChange(onConfigChange)
}

// LoadFrom reads and checks the config file in dir without watching it.
func LoadFrom(dir string) error {
	viper.SetConfigName("config")
	viper.AddConfigPath(dir)

	c, err := load(false)
	if err != nil {
		return err
	}

	if err := check(c); err != nil {
		return err
	}

	set(update(c))
	return nil
}

func load(display bool) (config, error) {
	var c config

	err := viper.ReadInConfig()
	if err != nil {
		return c, err
	}

	err = viper.Unmarshal(&c)
	if err != nil {
		return c, err
	}

	if display {
		shown := c
		shown.Password = "******"
		shown.AliyunMail.AccessKeySecret = "******"
		configContent, _ := json.MarshalIndent(shown, "", "    ")
		log.Println(string(configContent))
	}

	return c, nil
}

func update(c config) config {
	rpcs := make([]string, len(c.RPCs))
	for i, rpc := range c.RPCs {
		if !strings.HasPrefix(rpc, "http") {
			rpc = "http://" + rpc
		}
		rpcs[i] = rpc
	}
	c.RPCs = rpcs
	return c
}

// UseDatabase reports whether ledger state is kept in mysql.
func UseDatabase() bool {
	return get().Database != ""
}

// GetDbConnStr returns mysql connection string.
func GetDbConnStr() string {
	c := get()
	str := fmt.Sprintf(
		"%s:%s@tcp(%s:%s)/%s",
		c.User,
		c.Password,
		c.Hostname,
		c.Port,
		c.Database,
	)

	params := []string{
		"charset=utf8",
		"parseTime=True",
		"loc=Local",
	}

	return fmt.Sprintf("%s?%s", str, strings.Join(params, "&"))
}

// GetLabel returns custome label as console output prefix.
func GetLabel() string {
	return get().Label
}

// GetRPCs returns all asset ledger rpc urls from config.
func GetRPCs() []string {
	return get().RPCs
}

// GetAdmin returns the administrative principal.
func GetAdmin() string {
	return get().Admin
}

// GetSchedules returns the configured batch windows.
func GetSchedules() []BatchSchedule {
	return get().Schedules
}

// GetReportInterval returns the interval between capacity reports.
func GetReportInterval() time.Duration {
	return time.Duration(get().ReportInterval) * time.Second
}

// GetTraitCacheExpiry returns how long horse traits stay cached.
func GetTraitCacheExpiry() time.Duration {
	minutes := get().TraitCacheMinutes
	if minutes == 0 {
		return time.Hour
	}
	return time.Duration(minutes) * time.Minute
}

// LoadAliyunMailConfig performs a basic check on aliyun mail config.
func LoadAliyunMailConfig() error {
	return checkAliyunMail()
}

// GetAliyunMailConfig returns aliyun mail configs.
func GetAliyunMailConfig() AliyunMailConfig {
	return get().AliyunMail
}

func check(c config) error {
	if err := validate.Struct(c); err != nil {
		return err
	}

	if err := checkRPCs(c.RPCs); err != nil {
		return err
	}

	return checkSchedules(c.Schedules)
}

func checkRPCs(rpcs []string) error {
	for _, rpc := range rpcs {
		if strings.HasPrefix(rpc, "http") {
			u, err := url.Parse(rpc)
			if err != nil {
				return err
			}
			rpc = u.Host
		}

		_, _, err := net.SplitHostPort(rpc)
		if err != nil {
			return err
		}
	}

	return nil
}

func checkSchedules(schedules []BatchSchedule) error {
	for _, s := range schedules {
		if !batch.Known(s.Batch) {
			return fmt.Errorf("batch_schedule: unknown batch %d", s.Batch)
		}

		if _, err := cron.ParseStandard(s.Open); err != nil {
			return fmt.Errorf("batch_schedule: batch %d open: %v", s.Batch, err)
		}

		if s.Close == "" {
			continue
		}
		if _, err := cron.ParseStandard(s.Close); err != nil {
			return fmt.Errorf("batch_schedule: batch %d close: %v", s.Batch, err)
		}
	}

	return nil
}

func checkAliyunMail() error {
	m := get().AliyunMail

	if m.AccountName == "" {
		return errors.New("aliyun mail account name cannot be empty")
	}

	if m.Region == "" {
		return errors.New("aliyun mail region cannot be empty")
	}

	if m.AccessKeyID == "" {
		return errors.New("aliyun mail accessKeyID cannot be empty")
	}

	if m.AccessKeySecret == "" {
		return errors.New("aliyun mail accessKeySecret cannot be empty")
	}

	if len(m.Receiver) == 0 {
		return errors.New("aliyun mail receiver cannot be empty")
	}

	return nil
}

func onConfigChange(e fsnotify.Event) {
	log.Printf("Config file change detected: %s", e.Name)
	reload(true)
}

// reload replaces the current config with a checked copy of the file.
func reload(display bool) {
	const stdErr = "Failed to read new configuration, current configuration stay unchanged"

	prev := get()

	c, err := load(display)
	if err != nil {
		log.Printf("%s: %s", stdErr, err)
		return
	}

	if err := check(c); err != nil {
		log.Printf("%s: %s", stdErr, err)
		return
	}

	c = update(c)

	if c.Admin != prev.Admin {
		log.Printf("Administrator change requires a restart, still using %s", prev.Admin)
		c.Admin = prev.Admin
	}

	set(c)
	log.UpdatePrefix(GetLabel())
}
