package main

import "supportdesk_backend/internal/app"

func main() {
	app.Run()
}
