package email

import (
	"context"
	"fmt"
	"html"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	appconfig "github.com/lumiforge/cutroom-backend/internal/config"
)

// EmailType представляет тип email
type EmailType string

const (
	EmailTypeWelcome      EmailType = "welcome"
	EmailTypeNotification EmailType = "notification"
)

// EmailStatus представляет статус email
type EmailStatus string

const (
	EmailStatusSent   EmailStatus = "sent"
	EmailStatusFailed EmailStatus = "failed"
)

// EmailMessage представляет отправленное email сообщение
type EmailMessage struct {
	Type      EmailType   `json:"type"`
	Recipient string      `json:"recipient"`
	Subject   string      `json:"subject"`
	Body      string      `json:"body"`
	Status    EmailStatus `json:"status"`
	Error     string      `json:"error,omitempty"`
}

type Client struct {
	SESClient *sesv2.Client
	Sender    string
	AppURL    string
}

// NewClient создает SES клиент. Без CR_POSTBOX_ENDPOINT отправка отключена
func NewClient(appCfg *appconfig.Config) *Client {
	client := &Client{
		Sender: appCfg.EmailFrom,
		AppURL: appCfg.AppURL,
	}
	if appCfg.SESEndpoint == "" {
		return client
	}

	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL:           appCfg.SESEndpoint,
			SigningRegion: appCfg.SESRegion,
		}, nil
	})

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithEndpointResolverWithOptions(resolver),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(appCfg.SESAccessKeyID, appCfg.SESSecretAccessKey, "")),
		config.WithRegion(appCfg.SESRegion),
	)
	if err != nil {
		log.Fatalf("failed to load SES config: %v", err)
	}

	client.SESClient = sesv2.NewFromConfig(cfg)
	return client
}

// IsConfigured проверяет, настроен ли email сервис
func (c *Client) IsConfigured() bool {
	return c.Sender != "" && c.SESClient != nil
}

// SendWelcomeEmail отправляет приветствие после регистрации
func (c *Client) SendWelcomeEmail(ctx context.Context, toEmail, fullName string, editorApplicant bool) (*EmailMessage, error) {
	subject := "Добро пожаловать в CutRoom"
	text := "Ваш аккаунт создан. Загружайте исходники и выбирайте пакет монтажа."
	if editorApplicant {
		text = "Ваша заявка монтажера принята и ожидает проверки администратором. Мы сообщим о решении."
	}
	body := fmt.Sprintf(`
		<html>
		<body>
			<h2>Здравствуйте, %s!</h2>
			<p>%s</p>
			<p><a href="%s">Открыть CutRoom</a></p>
		</body>
		</html>
	`, html.EscapeString(fullName), text, c.AppURL)

	return c.send(ctx, EmailTypeWelcome, toEmail, subject, body)
}

// SendNotificationEmail дублирует уведомление на почту
func (c *Client) SendNotificationEmail(ctx context.Context, toEmail, fullName, title, message, projectID string) (*EmailMessage, error) {
	link := c.AppURL
	if projectID != "" {
		link = fmt.Sprintf("%s/projects/%s", c.AppURL, projectID)
	}
	body := fmt.Sprintf(`
		<html>
		<head>
			<meta charset="UTF-8">
		</head>
		<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
			<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
				<p>Здравствуйте, %s!</p>
				<h3>%s</h3>
				<p>%s</p>
				<p style="margin-top: 30px;">
					<a href="%s" style="background-color: #007bff; color: white; padding: 12px 30px; text-decoration: none; border-radius: 4px; display: inline-block;">
						Перейти к проекту
					</a>
				</p>
				<p style="margin-top: 30px; border-top: 1px solid #ddd; padding-top: 20px; font-size: 12px; color: #999;">
					Это письмо сгенерировано автоматически. Пожалуйста, не отвечайте на него.
				</p>
			</div>
		</body>
		</html>
	`, html.EscapeString(fullName), html.EscapeString(title), html.EscapeString(message), link)

	return c.send(ctx, EmailTypeNotification, toEmail, title+" - CutRoom", body)
}

func (c *Client) send(ctx context.Context, emailType EmailType, toEmail, subject, body string) (*EmailMessage, error) {
	message := &EmailMessage{
		Type:      emailType,
		Recipient: toEmail,
		Subject:   subject,
		Body:      body,
		Status:    EmailStatusSent,
	}

	if err := c.sendHTMLEmail(ctx, toEmail, subject, body); err != nil {
		message.Status = EmailStatusFailed
		message.Error = err.Error()
		return message, err
	}
	return message, nil
}

// sendHTMLEmail отправляет HTML email через SES
func (c *Client) sendHTMLEmail(ctx context.Context, toEmail, subject, htmlBody string) error {
	if !c.IsConfigured() {
		return fmt.Errorf("email client is not configured")
	}
	input := &sesv2.SendEmailInput{
		FromEmailAddress: &c.Sender,
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data: &subject,
				},
				Body: &types.Body{
					Html: &types.Content{
						Data: &htmlBody,
					},
				},
			},
		},
	}

	_, err := c.SESClient.SendEmail(ctx, input)
	return err
}
