package config

import (
	"fmt"
	"log"
	"sync"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env    string `yaml:"env" env:"ENV" env-default:"local"`
	Listen struct {
		BindIP string `yaml:"bind_ip" env-default:"127.0.0.1"`
		Port   string `yaml:"port" env:"PORT" env-default:"3000"`
	} `yaml:"listen"`
	Mongo struct {
		Enabled  bool   `yaml:"enabled" env-default:"false"`
		Host     string `yaml:"host" env-default:"127.0.0.1"`
		Port     string `yaml:"port" env-default:"27017"`
		User     string `yaml:"user" env-default:""`
		Password string `yaml:"password" env-default:""`
		Database string `yaml:"database" env-default:"atendebot"`
	} `yaml:"mongo"`
	AI struct {
		GeminiApiKey   string `yaml:"gemini_api_key" env:"GEMINI_API_KEY" env-default:""`
		GeminiBaseURL  string `yaml:"gemini_base_url" env-default:"https://generativelanguage.googleapis.com/v1beta/openai/"`
		GeminiModel    string `yaml:"gemini_model" env-default:"gemini-1.5-flash"`
		GroqApiKey     string `yaml:"groq_api_key" env:"GROQ_API_KEY" env-default:""`
		GroqBaseURL    string `yaml:"groq_base_url" env-default:"https://api.groq.com/openai/v1"`
		GroqModel      string `yaml:"groq_model" env-default:"llama-3.3-70b-versatile"`
		EmbeddingModel string `yaml:"embedding_model" env-default:"text-embedding-004"`
		TimeoutSec     int    `yaml:"timeout_sec" env-default:"8"`
	} `yaml:"ai"`
	WhatsApp struct {
		Enabled       bool   `yaml:"enabled" env-default:"false"`
		AccessToken   string `yaml:"access_token" env:"WA_ACCESS_TOKEN" env-default:""`
		VerifyToken   string `yaml:"verify_token" env:"WA_VERIFY_TOKEN" env-default:""`
		AppSecret     string `yaml:"app_secret" env:"WA_APP_SECRET" env-default:""`
		PhoneNumberID string `yaml:"phone_number_id" env:"WA_PHONE_NUMBER_ID" env-default:""`
	} `yaml:"whatsapp"`
	Telegram struct {
		Enabled bool   `yaml:"enabled" env-default:"false"`
		ApiKey  string `yaml:"api_key" env:"TG_API_KEY" env-default:""`
		AdminId int64  `yaml:"admin_id" env-default:"0"`
	} `yaml:"telegram"`
	Admin struct {
		Username string `yaml:"username" env-default:"admin"`
		Password string `yaml:"password" env-default:"admin"`
	} `yaml:"admin"`
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
