// @title           Caps Collective API
// @version         1.0
// @description     Community portal API. Authenticate with an identity provider ID token.
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerToken
// @in              header
// @name            Authorization
// @description     Type "Bearer" followed by a space and your ID token.
package api
