package main

// General API documentation for swaggo. Run `swag init -g cmd/textclassd/docs.go`.
//
// @title           textclassd API
// @version         1.0
// @description     HTTP API for serving a versioned text classification model.
//
// @contact.name   textclassd maintainers
// @contact.url    https://github.com/your-org/textclassd
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
