// @title                       Account Service API
// @version                     1.0
// @description                 User accounts with admin-approved profile updates.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the session token.
package main

import "github.com/talentgate/account-service/cmd"

func main() {
	cmd.Execute()
}
