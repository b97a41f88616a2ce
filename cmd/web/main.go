package main

import "fanbase_backend/internal/app"

func main() {
	app.Run()
}
