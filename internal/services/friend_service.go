package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dias221467/shadowmeet/internal/models"
	"github.com/Dias221467/shadowmeet/internal/queue"
	"github.com/Dias221467/shadowmeet/internal/repository"
	"github.com/Dias221467/shadowmeet/pkg/apperror"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const msgRequestExists = "A friend request already exists between you and this user"

// FriendService handles business logic for managing friendships.
type FriendService struct {
	friendRepo FriendRequestStore
	userRepo   UserStore
	tx         Transactor
	events     queue.Publisher
	now        func() time.Time
}

// NewFriendService creates a new FriendService.
func NewFriendService(friendRepo FriendRequestStore, userRepo UserStore, tx Transactor, events queue.Publisher) *FriendService {
	return &FriendService{
		friendRepo: friendRepo,
		userRepo:   userRepo,
		tx:         tx,
		events:     events,
		now:        time.Now,
	}
}

// SendFriendRequest creates a pending request from sender to recipient.
func (s *FriendService) SendFriendRequest(ctx context.Context, sender *models.User, recipientID primitive.ObjectID) (*models.FriendRequest, error) {
	if sender.ID == recipientID {
		return nil, apperror.Validation("You can't send friend request to yourself")
	}

	recipient, err := s.userRepo.GetUserByID(ctx, recipientID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.NotFound("Recipient not found")
	}
	if err != nil {
		return nil, err
	}

	if recipient.HasFriend(sender.ID) || sender.HasFriend(recipientID) {
		return nil, apperror.Validation("You are already friends with this user")
	}

	exists, err := s.friendRepo.ExistsBetween(ctx, sender.ID, recipientID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperror.Conflict(msgRequestExists)
	}

	request, err := s.friendRepo.CreateRequest(ctx, &models.FriendRequest{
		Sender:    sender.ID,
		Recipient: recipientID,
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, apperror.Conflict(msgRequestExists)
	}
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"requestID": request.ID.Hex(),
		"sender":    sender.ID.Hex(),
		"recipient": recipientID.Hex(),
	}).Info("Friend request sent")
	s.publish(ctx, queue.FriendRequestSent, request)
	return request, nil
}

// AcceptFriendRequest lets the recipient accept a pending request. Both
// users then list each other as friends.
func (s *FriendService) AcceptFriendRequest(ctx context.Context, actorID, requestID primitive.ObjectID) (*models.FriendRequest, error) {
	var accepted *models.FriendRequest

	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		request, err := s.friendRepo.GetRequestByID(ctx, requestID)
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.NotFound("Friend request not found")
		}
		if err != nil {
			return err
		}

		if request.Recipient != actorID {
			return apperror.Forbidden("You are not authorized to accept this request")
		}

		// Friend sets are written before the status flips so a failed
		// attempt leaves the request pending, and a repeated accept still
		// repairs sets left incomplete by an earlier partial write.
		if err := s.userRepo.AddFriend(ctx, request.Sender, request.Recipient); err != nil {
			return fmt.Errorf("failed to add friend to sender: %w", err)
		}
		if err := s.userRepo.AddFriend(ctx, request.Recipient, request.Sender); err != nil {
			return fmt.Errorf("failed to add friend to recipient: %w", err)
		}

		ok, err := s.friendRepo.MarkAccepted(ctx, requestID)
		if err != nil {
			return err
		}
		if !ok {
			return apperror.Conflict("Friend request already accepted")
		}

		request.Status = models.FriendRequestAccepted
		accepted = request
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithField("requestID", requestID.Hex()).Info("Friend request accepted")
	s.publish(ctx, queue.FriendRequestAccepted, accepted)
	return accepted, nil
}

// FriendRequests groups the two listings shown on the notifications page.
type FriendRequests struct {
	Incoming []models.FriendRequestView `json:"incomingReqs"`
	Accepted []models.FriendRequestView `json:"acceptedReqs"`
}

// GetFriendRequests returns pending requests addressed to the user and the
// user's own requests that were accepted.
func (s *FriendService) GetFriendRequests(ctx context.Context, userID primitive.ObjectID) (*FriendRequests, error) {
	incoming, err := s.friendRepo.GetIncomingPending(ctx, userID)
	if err != nil {
		return nil, err
	}
	accepted, err := s.friendRepo.GetAcceptedSent(ctx, userID)
	if err != nil {
		return nil, err
	}

	incomingViews, err := s.resolve(ctx, incoming)
	if err != nil {
		return nil, err
	}
	acceptedViews, err := s.resolve(ctx, accepted)
	if err != nil {
		return nil, err
	}
	return &FriendRequests{Incoming: incomingViews, Accepted: acceptedViews}, nil
}

// GetOutgoingRequests returns the user's pending requests.
func (s *FriendService) GetOutgoingRequests(ctx context.Context, userID primitive.ObjectID) ([]models.FriendRequestView, error) {
	outgoing, err := s.friendRepo.GetOutgoingPending(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, outgoing)
}

// resolve replaces the party ids with public profiles using one lookup.
func (s *FriendService) resolve(ctx context.Context, requests []models.FriendRequest) ([]models.FriendRequestView, error) {
	views := make([]models.FriendRequestView, 0, len(requests))
	if len(requests) == 0 {
		return views, nil
	}

	seen := make(map[primitive.ObjectID]struct{})
	var ids []primitive.ObjectID
	for _, r := range requests {
		for _, id := range []primitive.ObjectID{r.Sender, r.Recipient} {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}

	users, err := s.userRepo.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]models.PublicUser, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	for _, r := range requests {
		sender, ok1 := byID[r.Sender]
		recipient, ok2 := byID[r.Recipient]
		if !ok1 || !ok2 {
			continue
		}
		views = append(views, models.FriendRequestView{
			ID:        r.ID,
			Sender:    sender,
			Recipient: recipient,
			Status:    r.Status,
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
		})
	}
	return views, nil
}

func (s *FriendService) publish(ctx context.Context, name string, r *models.FriendRequest) {
	publish(ctx, s.events, name, queue.FriendRequestEvent{
		RequestID:   r.ID.Hex(),
		SenderID:    r.Sender.Hex(),
		RecipientID: r.Recipient.Hex(),
		Status:      string(r.Status),
		OccurredAt:  s.now().UTC().Format(time.RFC3339),
	})
}
