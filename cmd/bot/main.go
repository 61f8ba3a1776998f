package main

import (
	"context"
	"log"

	"github.com/dmitrijs2005/farmkeeper/internal/bot"
	"github.com/dmitrijs2005/farmkeeper/internal/bot/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := bot.NewApp(cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
