package client

import (
	"crypto/ecdsa"
	"crypto/rsa"
	"errors"
	"fmt"

	"github.com/mt-inside/tls-connect/pkg/engine"
	"github.com/mt-inside/tls-connect/pkg/utils"
)

func engineSettings(s *Session) engine.Settings {
	return engine.Settings{
		VerifyCert: s.config.VerifyCert,
		VerifyName: s.config.VerifyName,
		Roots:      s.config.TlsServingCAs,
		ALPN:       s.config.ALPN,
		MinVersion: s.config.MinVersion,
		MaxVersion: s.config.MaxVersion,
	}
}

// bootstrap readies an engine connection for a client handshake.
// Nothing on the session changes; bind() commits the results. On error, the engine conn has already been released.
func (s *Session) bootstrap(servername *string) (engine.Conn, *string, error) {
	if s.role != RoleClient {
		return nil, nil, ErrNotClient
	}
	if s.state != StateNotConnected {
		return nil, nil, ErrAlreadyConnected
	}

	sni := utils.CanonicalServerName(servername)
	if servername != nil && sni == nil {
		s.log.V(1).Info("Not sending SNI: literal address", "servername", *servername)
	}

	if s.config.OCSPRequireStapling {
		return nil, nil, ErrOCSPStapling
	}

	conn, err := s.engine.NewConn(engineSettings(s))
	if err != nil {
		return nil, nil, engineError(ErrResource, err)
	}
	if err := s.configure(conn, sni); err != nil {
		conn.Release()
		return nil, nil, err
	}

	return conn, sni, nil
}

func (s *Session) configure(conn engine.Conn, sni *string) error {
	if err := conn.InstallDefaultVerifier(); err != nil {
		return wrap(ErrEngine, err)
	}

	if kp := s.config.Keypair; kp != nil {
		var err error
		switch key := kp.Key.(type) {
		case *rsa.PrivateKey:
			err = conn.SetSingleRSA(kp.Chain, key)
		case *ecdsa.PrivateKey:
			err = conn.SetSingleEC(kp.Chain, key)
		default:
			return fmt.Errorf("%w: %T", ErrUnsupportedKeyType, kp.Key)
		}
		if err != nil {
			return engineError(ErrEngine, err)
		}
		s.log.V(1).Info("Bound client credential", "keyType", kp.KeyType())
	}

	// Names can't be verified against no name
	if s.config.VerifyName && sni == nil {
		return ErrNoServerName
	}

	if err := conn.Reset(sni); err != nil {
		return wrap(ErrEngine, err)
	}

	return nil
}

// engineError is a config error if the engine says we asked for something it can't do, otherwise kind.
func engineError(kind, err error) error {
	if errors.Is(err, engine.ErrInvalidSettings) {
		return wrap(ErrConfig, err)
	}
	return wrap(kind, err)
}

// bind attaches the transport and commits everything to the session. This is the only place state moves to Connected.
func (s *Session) bind(conn engine.Conn, sni *string, t Transport) error {
	nc, err := transportConn(t)
	if err == nil {
		err = conn.Attach(nc)
	}
	if err != nil {
		conn.Release()
		return wrap(ErrEngine, err)
	}

	s.conn = conn
	s.serverName = sni
	s.transport = t
	s.state = StateConnected

	if sni != nil {
		s.log.V(1).Info("Bootstrapped", "transport", t, "sni", *sni)
	} else {
		s.log.V(1).Info("Bootstrapped", "transport", t, "sni", "<none>")
	}

	return nil
}
