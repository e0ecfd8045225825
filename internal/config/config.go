package config

import (
	"fmt"
	"github.com/ilyakaznacheev/cleanenv"
	"log"
	"sync"
)

type Config struct {
	Env      string `yaml:"env" env-default:"local"`
	Telegram struct {
		ApiKey  string `yaml:"api_key" env-default:""`
		AdminId int64  `yaml:"admin_id" env-default:"0"`
		BotName string `yaml:"bot_name" env-default:"MarketChatBot"`
		Enabled bool   `yaml:"enabled" env-default:"false"`
	} `yaml:"telegram"`
	OpenAI struct {
		Enabled bool   `yaml:"enabled" env-default:"false"`
		ApiKey  string `yaml:"api_key" env-default:""`
		Model   string `yaml:"model" env-default:"gpt-4o-mini"`
		Prompt  string `yaml:"prompt" env-default:"You answer customers on behalf of a local business. Be brief and polite. Never promise appointment times; offer to check availability instead."`
	} `yaml:"openai"`
	Mongo struct {
		Enabled  bool   `yaml:"enabled" env-default:"false"`
		Host     string `yaml:"host" env-default:"127.0.0.1"`
		Port     string `yaml:"port" env-default:"27017"`
		User     string `yaml:"user" env-default:"admin"`
		Password string `yaml:"password" env-default:"pass"`
		Database string `yaml:"database" env-default:"marketchat"`
		Timeout  int    `yaml:"timeout" env-default:"5"`
	} `yaml:"mongo"`
	Redis struct {
		Enabled       bool   `yaml:"enabled" env-default:"false"`
		Addr          string `yaml:"addr" env-default:"127.0.0.1:6379"`
		Password      string `yaml:"password" env-default:""`
		DB            int    `yaml:"db" env-default:"0"`
		ChannelPrefix string `yaml:"channel_prefix" env-default:"marketchat:"`
	} `yaml:"redis"`
	JWT struct {
		Secret string `yaml:"secret" env:"JWT_SECRET" env-default:""`
		Issuer string `yaml:"issuer" env-default:"marketchat"`
		TTL    int    `yaml:"ttl_hours" env-default:"24"`
	} `yaml:"jwt"`
	Chat struct {
		HistoryLimit  int `yaml:"history_limit" env-default:"20"`
		FanoutTimeout int `yaml:"fanout_timeout" env-default:"5"`
		ReplyTimeout  int `yaml:"reply_timeout" env-default:"30"`
	} `yaml:"chat"`
	Listen struct {
		BindIP  string `yaml:"bind_ip" env-default:"127.0.0.1"`
		Port    string `yaml:"port" env-default:"9100"`
		Timeout int    `yaml:"timeout" env-default:"10"`
	} `yaml:"listen"`
}

var instance *Config
var once sync.Once

func MustLoad(path string) *Config {
	var err error
	once.Do(func() {
		instance = &Config{}
		if err = cleanenv.ReadConfig(path, instance); err != nil {
			desc, _ := cleanenv.GetDescription(instance, nil)
			err = fmt.Errorf("%s; %s", err, desc)
			instance = nil
			log.Fatal(err)
		}
	})
	return instance
}

// Default returns a config populated only from env-default tags.
func Default() *Config {
	conf := &Config{}
	_ = cleanenv.ReadEnv(conf)
	return conf
}
