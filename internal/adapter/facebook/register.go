package facebook

import "github.com/NeuroForge1/Genia-fronted-sub001/internal/port/connector"

func init() {
	connector.RegisterSocial(platformFacebook, func(creds connector.Credentials) (connector.SocialConnector, error) {
		return NewPage(creds)
	})
	connector.RegisterSocial(platformInstagram, func(creds connector.Credentials) (connector.SocialConnector, error) {
		return NewInstagram(creds)
	})
}
