package api

import (
	"context"
	"net/url"
	"os"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/fleetwatch/fleetwatch/pkg/authorize"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// CustomClaims carries the role data we put into access tokens.
type CustomClaims struct {
	Role       string `json:"https://fleetwatch/role"`
	StationRef string `json:"https://fleetwatch/station"`
}

func (c CustomClaims) Validate(ctx context.Context) error {
	return nil
}

// EnsureValidToken checks the request JWT and stores the resolved Actor in the
// request locals for the handlers.
func EnsureValidToken() fiber.Handler {
	issuerURL, err := url.Parse("https://" + os.Getenv("AUTH0_DOMAIN") + "/")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to parse the issuer url")
	}

	provider := jwks.NewCachingProvider(issuerURL, 5*time.Minute)

	jwtValidator, err := validator.New(
		provider.KeyFunc,
		validator.RS256,
		issuerURL.String(),
		[]string{os.Getenv("AUTH0_AUDIENCE")},
		validator.WithCustomClaims(
			func() validator.CustomClaims {
				return &CustomClaims{}
			},
		),
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up the jwt validator")
	}

	return func(c *fiber.Ctx) (err error) {
		authHeader := c.Get("Authorization")

		if authHeader == "" {
			c.SendStatus(fiber.StatusUnauthorized)
			return c.JSON(fiber.Map{
				"error": "Authorization header is required",
			})
		}

		jwtToken := authHeader[7:]
		claimsI, jwtErr := jwtValidator.ValidateToken(context.Background(), jwtToken)

		if jwtErr != nil {
			c.SendStatus(fiber.StatusUnauthorized)
			return c.JSON(fiber.Map{
				"error": "Invalid auth token",
			})
		}

		claims := claimsI.(*validator.ValidatedClaims)
		customClaims := claims.CustomClaims.(*CustomClaims)

		c.Locals("actor", actorFromClaims(customClaims))

		return c.Next()
	}
}

func actorFromClaims(claims *CustomClaims) authorize.Actor {
	switch claims.Role {
	case string(authorize.RoleSystemAdmin):
		return authorize.SystemAdmin()
	case string(authorize.RoleStationAdmin):
		return authorize.StationAdmin(claims.StationRef)
	default:
		return authorize.Actor{Role: authorize.RoleNone}
	}
}
